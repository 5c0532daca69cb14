package mailer

import (
	"context"
	"encoding/json"

	"github.com/finacore/apiserver/internal/mq"
	"github.com/finacore/apiserver/internal/services"
	"github.com/rs/zerolog"
)

// Email job kinds carried on the queue.
const (
	JobEmailVerification = "email-verification"
	JobPasswordReset     = "password-reset"
)

// EmailJob is the queue payload for one outbound email.
type EmailJob struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// QueueNotifier implements services.Notifier by publishing email jobs to
// the durable queue instead of delivering inline.
type QueueNotifier struct {
	queue mq.Backend
}

func NewQueueNotifier(queue mq.Backend) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) SendEmailVerification(ctx context.Context, email, token string) error {
	return n.publish(ctx, EmailJob{Kind: JobEmailVerification, Email: email, Token: token})
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	return n.publish(ctx, EmailJob{Kind: JobPasswordReset, Email: email, Token: token})
}

func (n *QueueNotifier) publish(ctx context.Context, job EmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = n.queue.Publish(ctx, data, map[string]string{"kind": job.Kind})
	return err
}

// JobHandler adapts a delivering Notifier into an mq.Handler for the
// worker. Malformed jobs are logged and acked; delivery failures are
// returned so the broker redelivers.
func JobHandler(delivery services.Notifier, log zerolog.Logger) mq.Handler {
	return func(ctx context.Context, job mq.Job) error {
		var email EmailJob
		if err := json.Unmarshal(job.Data, &email); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("discarding malformed email job")
			return nil
		}

		switch email.Kind {
		case JobEmailVerification:
			return delivery.SendEmailVerification(ctx, email.Email, email.Token)
		case JobPasswordReset:
			return delivery.SendPasswordReset(ctx, email.Email, email.Token)
		default:
			log.Error().Str("kind", email.Kind).Str("job_id", job.ID).Msg("discarding email job of unknown kind")
			return nil
		}
	}
}

var _ services.Notifier = (*QueueNotifier)(nil)
var _ services.Notifier = (*SMTPMailer)(nil)
