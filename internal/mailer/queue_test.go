package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/finacore/apiserver/internal/mq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	published  []mq.Job
	publishErr error
}

func (f *fakeQueue) Publish(_ context.Context, data []byte, attributes map[string]string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, mq.Job{ID: "job-1", Data: data, Attributes: attributes})
	return "job-1", nil
}

func (f *fakeQueue) Consume(context.Context, mq.Handler) error { return nil }
func (f *fakeQueue) Close() error                              { return nil }

type recordingDelivery struct {
	verifications []EmailJob
	resets        []EmailJob
	err           error
}

func (r *recordingDelivery) SendEmailVerification(_ context.Context, email, token string) error {
	if r.err != nil {
		return r.err
	}
	r.verifications = append(r.verifications, EmailJob{Email: email, Token: token})
	return nil
}

func (r *recordingDelivery) SendPasswordReset(_ context.Context, email, token string) error {
	if r.err != nil {
		return r.err
	}
	r.resets = append(r.resets, EmailJob{Email: email, Token: token})
	return nil
}

func TestQueueNotifierPublishesJobs(t *testing.T) {
	queue := &fakeQueue{}
	notifier := NewQueueNotifier(queue)

	require.NoError(t, notifier.SendEmailVerification(context.Background(), "a@example.com", "tok-1"))
	require.NoError(t, notifier.SendPasswordReset(context.Background(), "b@example.com", "tok-2"))
	require.Len(t, queue.published, 2)

	var job EmailJob
	require.NoError(t, json.Unmarshal(queue.published[0].Data, &job))
	assert.Equal(t, EmailJob{Kind: JobEmailVerification, Email: "a@example.com", Token: "tok-1"}, job)
	assert.Equal(t, JobEmailVerification, queue.published[0].Attributes["kind"])

	require.NoError(t, json.Unmarshal(queue.published[1].Data, &job))
	assert.Equal(t, EmailJob{Kind: JobPasswordReset, Email: "b@example.com", Token: "tok-2"}, job)
}

func TestQueueNotifierPropagatesPublishError(t *testing.T) {
	queue := &fakeQueue{publishErr: errors.New("broker down")}
	notifier := NewQueueNotifier(queue)

	err := notifier.SendEmailVerification(context.Background(), "a@example.com", "tok-1")
	assert.Error(t, err)
}

func TestJobHandlerDispatchesByKind(t *testing.T) {
	delivery := &recordingDelivery{}
	handler := JobHandler(delivery, zerolog.Nop())

	data, err := json.Marshal(EmailJob{Kind: JobEmailVerification, Email: "a@example.com", Token: "tok-1"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), mq.Job{ID: "j1", Data: data}))
	require.Len(t, delivery.verifications, 1)
	assert.Equal(t, "a@example.com", delivery.verifications[0].Email)

	data, err = json.Marshal(EmailJob{Kind: JobPasswordReset, Email: "b@example.com", Token: "tok-2"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), mq.Job{ID: "j2", Data: data}))
	require.Len(t, delivery.resets, 1)
}

func TestJobHandlerDiscardsMalformedJobs(t *testing.T) {
	delivery := &recordingDelivery{}
	handler := JobHandler(delivery, zerolog.Nop())

	// Malformed and unknown jobs are acked so they do not loop forever.
	assert.NoError(t, handler(context.Background(), mq.Job{ID: "j1", Data: []byte("not json")}))
	assert.NoError(t, handler(context.Background(), mq.Job{ID: "j2", Data: []byte(`{"kind":"unknown"}`)}))
	assert.Empty(t, delivery.verifications)
	assert.Empty(t, delivery.resets)
}

func TestJobHandlerReturnsDeliveryErrorForRedelivery(t *testing.T) {
	delivery := &recordingDelivery{err: errors.New("smtp down")}
	handler := JobHandler(delivery, zerolog.Nop())

	data, err := json.Marshal(EmailJob{Kind: JobEmailVerification, Email: "a@example.com", Token: "tok-1"})
	require.NoError(t, err)
	assert.Error(t, handler(context.Background(), mq.Job{ID: "j1", Data: data}))
}
