package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-rentals-api/internal/domain"
)

// Status classifies what happened to one alert during a sweep.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Reason refines a skipped or failed status.
type Reason string

const (
	ReasonNoMatches       Reason = "no_matches"
	ReasonCoolingDown     Reason = "cooling_down"
	ReasonUserResolution  Reason = "user_resolution"
	ReasonMail            Reason = "mail"
	ReasonRepositoryWrite Reason = "repository_write"
)

// Outcome is the per-alert result of a dispatch.
type Outcome struct {
	AlertID string `json:"alert_id"`
	Status  Status `json:"status"`
	Reason  Reason `json:"reason,omitempty"`
	Matches int    `json:"matches"`
	Err     error  `json:"-"`
}

const (
	mailSubject  = "Nova ujemanja za tvoj iskalni filter!"
	mailBodyTmpl = "Našli smo %d novih apartmajev."
)

type alertStore interface {
	UpdateLastSent(ctx context.Context, alertID string, sentAt time.Time) error
}

type userResolver interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

// Dispatcher evaluates a single alert and, when it has matches, emails the
// owner and records the send time.
type Dispatcher struct {
	alerts alertStore
	users  userResolver
	mailer mailSender

	// Cooldown suppresses resends for alerts notified within the window.
	// Zero disables the window entirely: every sweep that finds matches
	// sends again, so delivery is at-least-once with no de-duplication.
	Cooldown time.Duration

	logger *logrus.Logger
	now    func() time.Time
}

func NewDispatcher(alerts alertStore, users userResolver, mailer mailSender, cooldown time.Duration, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		alerts:   alerts,
		users:    users,
		mailer:   mailer,
		Cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch runs the full pipeline for one alert: match, cooldown gate, owner
// resolution, mail, last-sent update. It never mutates the alert when the
// outcome is Skipped or Failed(UserResolution)/Failed(Mail); only a
// successful send updates last_sent_at.
func (d *Dispatcher) Dispatch(ctx context.Context, a domain.Alert, listings []domain.Listing) Outcome {
	matches := Match(a, listings)
	if len(matches) == 0 {
		return Outcome{AlertID: a.AlertID, Status: StatusSkipped, Reason: ReasonNoMatches}
	}
	if d.Cooldown > 0 && a.LastSentAt != nil && d.now().Sub(*a.LastSentAt) < d.Cooldown {
		return Outcome{AlertID: a.AlertID, Status: StatusSkipped, Reason: ReasonCoolingDown, Matches: len(matches)}
	}

	u, err := d.users.Get(ctx, a.UserID)
	if err != nil {
		return Outcome{AlertID: a.AlertID, Status: StatusFailed, Reason: ReasonUserResolution, Matches: len(matches), Err: err}
	}
	if !u.Enable || u.DeletedAt != nil {
		return Outcome{
			AlertID: a.AlertID, Status: StatusFailed, Reason: ReasonUserResolution, Matches: len(matches),
			Err: fmt.Errorf("alert owner %s is disabled", a.UserID),
		}
	}

	body := fmt.Sprintf(mailBodyTmpl, len(matches))
	if err := d.mailer.SendEmail(u.Email, mailSubject, body); err != nil {
		return Outcome{AlertID: a.AlertID, Status: StatusFailed, Reason: ReasonMail, Matches: len(matches), Err: err}
	}

	if err := d.alerts.UpdateLastSent(ctx, a.AlertID, d.now().UTC()); err != nil {
		// The mail already went out. Until last_sent_at is written the next
		// sweep will treat this alert as never notified, so the owner may
		// receive the same mail twice.
		d.logger.WithFields(logrus.Fields{
			"alert_id": a.AlertID,
			"user_id":  a.UserID,
			"error":    err.Error(),
		}).Error("last_sent_at update failed after a successful send; duplicate notification possible on the next sweep")
		return Outcome{AlertID: a.AlertID, Status: StatusFailed, Reason: ReasonRepositoryWrite, Matches: len(matches), Err: err}
	}

	return Outcome{AlertID: a.AlertID, Status: StatusSent, Matches: len(matches)}
}
