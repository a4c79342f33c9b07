package alert

import (
	"agencychat/app/util/mylog"
	"context"
	"log/slog"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// LogNotifier reports alerts through the log, which forwards them to telegram.
type LogNotifier struct{}

func (LogNotifier) SendUrgent(ctx context.Context, subject, body, source string) error {
	slog.WarnContext(ctx, subject,
		"body", body,
		"source", source,
		mylog.TelegramKey, true,
	)

	return nil
}

// Fanout sends every alert to all of its senders concurrently.
type Fanout []Sender

func (f Fanout) SendUrgent(ctx context.Context, subject, body, source string) error {
	var g errgroup.Group

	for i, sender := range f {
		g.Go(func() error {
			if err := sender.SendUrgent(ctx, subject, body, source); err != nil {
				return oops.In("alert").With("sender", i).Wrapf(err, "sender %d", i)
			}

			return nil
		})
	}

	return g.Wait()
}
