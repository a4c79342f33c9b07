package conversation

import (
	"context"
	"errors"
	"sync"
)

var errUpstream = errors.New("upstream unavailable")

type generatorFunc func(ctx context.Context, prompt string) (*Envelope, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (*Envelope, error) {
	return f(ctx, prompt)
}

func replying(text string) generatorFunc {
	return func(context.Context, string) (*Envelope, error) {
		return &Envelope{Response: Text(text)}, nil
	}
}

func failing(err error) generatorFunc {
	return func(context.Context, string) (*Envelope, error) {
		return nil, err
	}
}

type recordingGenerator struct {
	prompts []string
	next    generatorFunc
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string) (*Envelope, error) {
	g.prompts = append(g.prompts, prompt)
	return g.next(ctx, prompt)
}

type sentNotification struct {
	subject string
	body    string
	source  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) SendUrgent(_ context.Context, subject, body, source string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, sentNotification{subject: subject, body: body, source: source})

	return n.err
}

var testContacts = Contacts{
	General:   "hello@agency.test",
	Urgent:    "urgent@agency.test",
	Phone:     "+1 555 0100",
	Portfolio: "https://agency.test/work",
}
