package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(generator Generator, opts ...Option) *Engine {
	return NewEngine(generator, NewFallbackPolicy(testContacts), opts...)
}

func TestEngine_EmptyResponseFallsBackByTopic(t *testing.T) {
	e := newTestEngine(replying(""))

	result := e.Respond(context.Background(), "How much does a website cost?", nil)

	assert.False(t, result.Success)
	assert.Equal(t, ReasonEmptyResponse, result.Reason)
	assert.Equal(t, NewFallbackPolicy(testContacts).Fallback("price"), result.Message)
	assert.Equal(t, 1, e.State().Failures)
	assert.Empty(t, e.State().LastReply)
}

func TestEngine_WhitespaceIsEmpty(t *testing.T) {
	e := newTestEngine(replying(" \n\t "))

	result := e.Respond(context.Background(), "hi", nil)

	assert.False(t, result.Success)
	assert.Equal(t, ReasonEmptyResponse, result.Reason)
}

func TestEngine_UrgentTurnNotifiesBeforeGenerating(t *testing.T) {
	notifier := &recordingNotifier{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var notifiedFirst bool
	generator := generatorFunc(func(context.Context, string) (*Envelope, error) {
		notifiedFirst = len(notifier.sent) == 1
		return &Envelope{Response: Text("  We're on it.  ")}, nil
	})

	e := newTestEngine(generator,
		WithNotifier(notifier),
		WithSource("website-chat"),
		WithClient("Mozilla/5.0 (203.0.113.7)"),
		WithClock(func() time.Time { return now }),
	)

	result := e.Respond(context.Background(), "This is urgent, my site is down!", nil)

	assert.Equal(t, Result{Success: true, Message: "We're on it."}, result)
	assert.True(t, notifiedFirst)
	require.Len(t, notifier.sent, 1)

	sent := notifier.sent[0]
	assert.Equal(t, urgentSubject, sent.subject)
	assert.Equal(t, "website-chat", sent.source)
	assert.Contains(t, sent.body, "This is urgent, my site is down!")
	assert.Contains(t, sent.body, "2026-03-01T12:00:00Z")
	assert.Contains(t, sent.body, "Mozilla/5.0 (203.0.113.7)")
}

func TestEngine_CalmTurnDoesNotNotify(t *testing.T) {
	notifier := &recordingNotifier{}
	e := newTestEngine(replying("Sure!"), WithNotifier(notifier))

	e.Respond(context.Background(), "Can I see your portfolio?", nil)

	assert.Empty(t, notifier.sent)
}

func TestEngine_NotifierFailureIsAdvisory(t *testing.T) {
	notifier := &recordingNotifier{err: fmt.Errorf("smtp unreachable")}

	t.Run("generation succeeds", func(t *testing.T) {
		e := newTestEngine(replying("Help is on the way."), WithNotifier(notifier))

		result := e.Respond(context.Background(), "emergency, we got hacked", nil)

		assert.Equal(t, Result{Success: true, Message: "Help is on the way."}, result)
	})

	t.Run("generation fails too", func(t *testing.T) {
		e := newTestEngine(failing(errUpstream), WithNotifier(notifier))

		result := e.Respond(context.Background(), "emergency, we got hacked", nil)

		assert.False(t, result.Success)
		assert.Equal(t, NewFallbackPolicy(testContacts).Fallback("urgent"), result.Message)
		assert.Contains(t, result.Error, errUpstream.Error())
	})

	t.Run("notifier panics", func(t *testing.T) {
		e := newTestEngine(replying("ok"), WithNotifier(panickingNotifier{}))

		result := e.Respond(context.Background(), "site is down", nil)

		assert.True(t, result.Success)
	})
}

type panickingNotifier struct{}

func (panickingNotifier) SendUrgent(context.Context, string, string, string) error {
	panic("mailer exploded")
}

func TestEngine_RepeatedReplyIsSuppressed(t *testing.T) {
	e := newTestEngine(replying("Hello!"))
	ctx := context.Background()

	first := e.Respond(ctx, "hi", nil)
	second := e.Respond(ctx, "hi", nil)
	third := e.Respond(ctx, "hi", nil)

	assert.Equal(t, Result{Success: true, Message: "Hello!"}, first)
	assert.Equal(t, Result{Success: true, Message: "Hello!"}, second)

	assert.False(t, third.Success)
	assert.Equal(t, ReasonDuplicateResponse, third.Reason)
	assert.Equal(t, e.fallback.Stuck(), third.Message)
	assert.Equal(t, 0, e.State().Duplicates)
	assert.Equal(t, 1, e.State().Failures)
}

func TestEngine_SustainedOutage(t *testing.T) {
	e := newTestEngine(failing(errUpstream))
	ctx := context.Background()

	first := e.Respond(ctx, "How much does a website cost?", nil)
	second := e.Respond(ctx, "How much does a website cost?", nil)
	third := e.Respond(ctx, "How much does a website cost?", nil)

	pricing := e.fallback.Fallback("price")
	assert.Equal(t, pricing, first.Message)
	assert.Equal(t, pricing, second.Message)
	assert.NotEqual(t, first.Message, third.Message)
	assert.Equal(t, e.fallback.Outage(), third.Message)

	for _, r := range []Result{first, second, third} {
		assert.False(t, r.Success)
		assert.NotEmpty(t, r.Error)
	}

	// stays in outage while failures continue
	assert.Equal(t, e.fallback.Outage(), e.Respond(ctx, "hi", nil).Message)
}

func TestEngine_GeneratorPanicIsCaught(t *testing.T) {
	e := newTestEngine(generatorFunc(func(context.Context, string) (*Envelope, error) {
		panic("nil map")
	}))

	result := e.Respond(context.Background(), "hi", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "panicked")
	assert.Equal(t, 1, e.State().Failures)
}

func TestEngine_SuccessResetsFailures(t *testing.T) {
	var reply generatorFunc = failing(errUpstream)
	e := newTestEngine(generatorFunc(func(ctx context.Context, prompt string) (*Envelope, error) {
		return reply(ctx, prompt)
	}))
	ctx := context.Background()

	e.Respond(ctx, "hi", nil)
	e.Respond(ctx, "hi", nil)
	e.Respond(ctx, "hi", nil)
	require.Equal(t, 3, e.State().Failures)

	reply = replying("")
	e.Respond(ctx, "hi", nil)
	require.Equal(t, 4, e.State().Failures)

	reply = replying("Back online!")
	result := e.Respond(ctx, "hi", nil)

	assert.Equal(t, Result{Success: true, Message: "Back online!"}, result)
	assert.Equal(t, State{LastReply: "Back online!"}, e.State())
}

func TestEngine_FallbackDoesNotCountAsRepeat(t *testing.T) {
	var reply generatorFunc = replying("Hello!")
	e := newTestEngine(generatorFunc(func(ctx context.Context, prompt string) (*Envelope, error) {
		return reply(ctx, prompt)
	}))
	ctx := context.Background()

	e.Respond(ctx, "hi", nil)

	reply = replying("")
	e.Respond(ctx, "hi", nil)
	assert.Equal(t, "Hello!", e.State().LastReply)

	reply = replying("Hello!")
	assert.True(t, e.Respond(ctx, "hi", nil).Success)
	assert.Equal(t, 1, e.State().Duplicates)
}

func TestEngine_ExtractsOutputsAndThunks(t *testing.T) {
	t.Run("first output", func(t *testing.T) {
		e := newTestEngine(generatorFunc(func(context.Context, string) (*Envelope, error) {
			return &Envelope{Outputs: []Value{Text("one"), Text("two")}}, nil
		}))

		assert.Equal(t, "one", e.Respond(context.Background(), "hi", nil).Message)
	})

	t.Run("thunk", func(t *testing.T) {
		e := newTestEngine(generatorFunc(func(context.Context, string) (*Envelope, error) {
			return &Envelope{Response: Thunk(func(context.Context) (string, error) {
				return "streamed", nil
			})}, nil
		}))

		assert.Equal(t, "streamed", e.Respond(context.Background(), "hi", nil).Message)
	})

	t.Run("nil envelope", func(t *testing.T) {
		e := newTestEngine(generatorFunc(func(context.Context, string) (*Envelope, error) {
			return nil, nil
		}))

		assert.Equal(t, ReasonEmptyResponse, e.Respond(context.Background(), "hi", nil).Reason)
	})
}

func TestEngine_PromptUsesRecentHistory(t *testing.T) {
	generator := &recordingGenerator{next: replying("ok")}
	e := newTestEngine(generator, WithPersona(Persona{
		AssistantName: "Nova",
		AgencyName:    "Pixel Forge",
		Contact:       "hello@agency.test",
	}))

	var history []Turn
	for i := 1; i <= 8; i++ {
		sender := SenderUser
		if i%2 == 0 {
			sender = SenderAssistant
		}
		history = append(history, Turn{Sender: sender, Text: fmt.Sprintf("turn %d", i)})
	}
	before := append([]Turn(nil), history...)

	e.Respond(context.Background(), "What about {assistant}?", history)

	require.Len(t, generator.prompts, 1)
	prompt := generator.prompts[0]

	assert.NotContains(t, prompt, "turn 1\n")
	assert.NotContains(t, prompt, "turn 2\n")
	assert.Contains(t, prompt, "User: turn 3\nNova: turn 4\nUser: turn 5\nNova: turn 6\nUser: turn 7\nNova: turn 8")
	assert.Contains(t, prompt, "Pixel Forge")
	assert.Contains(t, prompt, "User: What about {assistant}?\nNova:")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "Nova:"))
	assert.Equal(t, before, history)
}

func TestEngine_PromptWithoutHistory(t *testing.T) {
	generator := &recordingGenerator{next: replying("ok")}
	e := newTestEngine(generator)

	e.Respond(context.Background(), "hi", nil)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "No previous messages")
}
