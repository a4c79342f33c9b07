package alert

import (
	"agencychat/app/client/email"
	"agencychat/app/config"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/do"
)

var ErrQueueFull = errors.New("alert queue is full")
var ErrClosed = errors.New("alert dispatcher is closed")

var _ do.Shutdownable = (*Dispatcher)(nil)

type Sender interface {
	SendUrgent(ctx context.Context, subject, body, source string) error
}

type Alert struct {
	Subject string
	Body    string
	Source  string
}

// Dispatcher accepts urgent notifications without blocking the caller and
// delivers them from a background worker.
type Dispatcher struct {
	sink        Sender
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Alert
}

func New(di *do.Injector) (*Dispatcher, error) {
	cfg := do.MustInvoke[*config.Config](di)

	sinks := Fanout{LogNotifier{}}
	if cfg.Email.Enabled {
		sinks = append(sinks, email.New(cfg.Email))
	}

	return NewDispatcher(sinks, cfg.Alert.QueueSize, cfg.Alert.SendTimeout), nil
}

func NewDispatcher(sink Sender, size int, sendTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		sink:        sink,
		sendTimeout: sendTimeout,
		queue:       make(chan Alert, size),
	}
}

// SendUrgent enqueues the notification. It fails only when the queue is full or closed.
func (d *Dispatcher) SendUrgent(_ context.Context, subject, body, source string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- Alert{Subject: subject, Body: body, Source: source}:
		return nil
	default:
		slog.Warn("Alert queue is full", "subject", subject)
		return ErrQueueFull
	}
}

// Run delivers queued alerts until ctx is done or the dispatcher is shut down.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-d.queue:
			if !ok {
				return
			}

			d.deliver(ctx, alert)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, alert Alert) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	if err := d.sink.SendUrgent(ctx, alert.Subject, alert.Body, alert.Source); err != nil {
		slog.Error("Failed to deliver urgent notification",
			"subject", alert.Subject,
			"source", alert.Source,
			"error", err,
		)
		return
	}

	slog.Info("Delivered urgent notification",
		"subject", alert.Subject,
		"duration", time.Since(start))
}

func (d *Dispatcher) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.closed {
		d.closed = true
		close(d.queue)
	}

	return nil
}
