package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/user-account-service/pkg/mailer/templates"
)

type outcome int

const (
	ack outcome = iota
	requeue
	drop
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 15 * time.Second

type worker struct {
	cfg    *config.Config
	sender mailer.Sender
	logger *logrus.Logger
}

// handle sends a welcome mail for user.created events. Other event types are
// acknowledged untouched; undecodable or unrenderable messages are dropped
// and failed deliveries requeued.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var ev entity.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	if ev.Type != entity.UserCreated {
		return ack
	}
	entry := w.logger.WithFields(logrus.Fields{"user_id": ev.UserID, "event": ev.Type})

	name := strings.TrimSpace(ev.FirstName + " " + ev.LastName)
	data := mailtpl.NewWelcomeData(w.cfg, name, ev.Email, mailtpl.WithTime(ev.OccurredAt))
	subject, text, html, err := mailtpl.Render(mailtpl.Welcome, data)
	if err != nil {
		entry.WithError(err).Error("render welcome failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.sender.Send(c, mailer.EmailJob{To: ev.Email, Subject: subject, Text: text, HTML: html}); err != nil {
		entry.WithError(err).Warn("send failed")
		return requeue
	}
	entry.Info("welcome email sent")
	return ack
}
