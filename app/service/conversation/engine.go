package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const urgentSubject = "Urgent chat support request"

type Generator interface {
	Generate(ctx context.Context, prompt string) (*Envelope, error)
}

type Notifier interface {
	SendUrgent(ctx context.Context, subject, body, source string) error
}

type Option func(*Engine)

func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

func WithPersona(persona Persona) Option {
	return func(e *Engine) {
		e.persona = persona
	}
}

// WithSource sets the source tag of urgent notifications.
func WithSource(source string) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithClient sets the client description embedded in urgent notifications.
func WithClient(client string) Option {
	return func(e *Engine) {
		e.client = client
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine answers the turns of one conversation.
//
// Engine does no locking. Concurrent Respond calls on the same Engine update
// its state in undefined order; callers serialize turns of a conversation.
type Engine struct {
	generator Generator
	notifier  Notifier
	fallback  *FallbackPolicy

	persona Persona
	source  string
	client  string
	now     func() time.Time

	state State
}

func NewEngine(generator Generator, fallback *FallbackPolicy, opts ...Option) *Engine {
	e := &Engine{
		generator: generator,
		fallback:  fallback,
		persona: Persona{
			AssistantName: "Assistant",
			AgencyName:    "our agency",
		},
		source: "website-chat",
		client: "unknown",
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Respond produces the reply to a user turn. It never fails: generation
// problems are turned into canned replies.
func (e *Engine) Respond(ctx context.Context, utterance string, history []Turn) Result {
	if IsUrgent(utterance) {
		e.notifyUrgent(ctx, utterance)
	}

	prompt := buildPrompt(e.persona, utterance, history)

	var text string

	envelope, err := e.generate(ctx, prompt)
	if err == nil {
		text = strings.TrimSpace(Extract(ctx, envelope.Pick()))
	}

	outcome, next := classify(e.state, observation{err: err, text: text})
	e.state = next

	slog.Debug("Turn classified",
		"outcome", outcome.String(),
		"failures", next.Failures,
		"duplicates", next.Duplicates,
	)

	switch outcome {
	case OutcomeSuccess:
		return Result{Success: true, Message: text}
	case OutcomeGenerationOutage:
		slog.Error("Generation keeps failing", "failures", next.Failures, "error", err)
		return Result{Message: e.fallback.Outage(), Error: err.Error()}
	case OutcomeGenerationTransient:
		slog.Warn("Generation failed", "failures", next.Failures, "error", err)
		return Result{Message: e.fallback.Fallback(utterance), Error: err.Error()}
	case OutcomeEmptyResponse:
		slog.Warn("Empty model response", "failures", next.Failures)
		return Result{Message: e.fallback.Fallback(utterance), Reason: ReasonEmptyResponse}
	case OutcomeDuplicateExhausted:
		slog.Warn("Model keeps repeating itself", "text", text)
		return Result{Message: e.fallback.Stuck(), Reason: ReasonDuplicateResponse}
	default:
		return Result{Message: e.fallback.Fallback(utterance)}
	}
}

// State returns a snapshot of the conversation state.
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) generate(ctx context.Context, prompt string) (envelope *Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()

	envelope, err = e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generator.Generate: %w", err)
	}

	return envelope, nil
}

func (e *Engine) notifyUrgent(ctx context.Context, utterance string) {
	if e.notifier == nil {
		return
	}

	body := fmt.Sprintf("An urgent message was received in the website chat.\n\n"+
		"Message: %s\nTime: %s\nClient: %s\n",
		utterance, e.now().Format(time.RFC3339), e.client)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("notifier panicked: %v", r)
			}
		}()

		return e.notifier.SendUrgent(ctx, urgentSubject, body, e.source)
	}()
	if err != nil {
		slog.Warn("Failed to send urgent notification", "error", err)
		return
	}

	slog.Info("Urgent notification sent", "source", e.source)
}
