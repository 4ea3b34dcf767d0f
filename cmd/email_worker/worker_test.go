package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/mailer"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, job mailer.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

func newTestWorker(s mailer.Sender) *worker {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &worker{cfg: &config.Config{AppName: "accounts"}, sender: s, logger: logger}
}

func eventBody(t *testing.T, typ entity.UserEventType) []byte {
	t.Helper()
	ev := entity.NewUserEvent(typ, &entity.User{ID: "u1", Email: "a@b.com", FirstName: "Paul", LastName: "Forbes"})
	ev.OccurredAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestHandleUserCreatedSendsWelcome(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.To == "a@b.com" && job.Subject == "Welcome to accounts" && job.HTML != ""
	})).Return(nil).Once()

	assert.Equal(t, ack, newTestWorker(s).handle(context.Background(), eventBody(t, entity.UserCreated)))
	s.AssertExpectations(t)
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	s := &mockSender{}
	w := newTestWorker(s)

	assert.Equal(t, ack, w.handle(context.Background(), eventBody(t, entity.UserUpdated)))
	assert.Equal(t, ack, w.handle(context.Background(), eventBody(t, entity.UserDeleted)))
	s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleRequeuesFailedDelivery(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, mock.Anything).Return(errors.New("mailgun down"))

	assert.Equal(t, requeue, newTestWorker(s).handle(context.Background(), eventBody(t, entity.UserCreated)))
}

func TestHandleDropsMalformedMessage(t *testing.T) {
	assert.Equal(t, drop, newTestWorker(&mockSender{}).handle(context.Background(), []byte("{")))
}
