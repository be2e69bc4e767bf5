package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"
)

const FailureNotice = "Failed to update application status"

var (
	ErrInFlight      = apperror.Conflict("A status update for this application is already in progress")
	ErrInvalidStatus = apperror.Validation("Invalid application status")
)

// StatusUpdater relays a status change to the backend.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id domain.ID, status domain.ApplicationStatus) error
}

// Control is what a view renders for one application's status selector.
type Control struct {
	ApplicationID domain.ID
	Displayed     domain.ApplicationStatus
	Updating      bool
}

type Workflow struct {
	updater StatusUpdater
	tracker *Tracker
	history *History
}

func New(updater StatusUpdater, tracker *Tracker, history *History) *Workflow {
	if tracker == nil {
		tracker = NewTracker()
	}
	if history == nil {
		history = NewHistory(0)
	}
	return &Workflow{updater: updater, tracker: tracker, history: history}
}

func (w *Workflow) History() *History {
	return w.history
}

func (w *Workflow) Control(view string, id domain.ID, displayed domain.ApplicationStatus) Control {
	return Control{
		ApplicationID: id,
		Displayed:     displayed,
		Updating:      w.tracker.InFlight(view, id),
	}
}

// RequestStatusChange relays target to the backend. The displayed status in
// the outcome moves to target only once the backend acknowledges; otherwise
// it stays at displayed and the outcome carries a notice. The returned error
// is the backend failure, if any.
func (w *Workflow) RequestStatusChange(ctx context.Context, view string, id domain.ID, displayed, target domain.ApplicationStatus) (domain.StatusOutcome, error) {
	outcome := domain.StatusOutcome{ApplicationID: id, Displayed: displayed}

	if !target.Valid() {
		outcome.Notice = ErrInvalidStatus.Message
		return outcome, ErrInvalidStatus
	}
	if !w.tracker.Begin(view, id) {
		outcome.Notice = ErrInFlight.Message
		return outcome, ErrInFlight
	}
	defer w.tracker.End(view, id)

	if err := w.updater.UpdateStatus(ctx, id, target); err != nil {
		logger.Log.WarnContext(ctx, "status change not applied",
			"application_id", id,
			"target", target,
			"error", err,
		)
		outcome.Notice = failureNotice(err)
		return outcome, fmt.Errorf("update status of application %s: %w", id, err)
	}

	if displayed.Valid() {
		w.history.Seed(view, id, displayed)
	}
	w.history.Append(view, id, target)

	logger.Log.InfoContext(ctx, "status change acknowledged",
		"application_id", id,
		"from", displayed,
		"to", target,
	)
	outcome.Displayed = target
	outcome.Acknowledged = true
	outcome.Notice = "Status updated to " + target.Label()
	return outcome, nil
}

// failureNotice is the backend's own message when it sent one, else the generic notice.
func failureNotice(err error) string {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return FailureNotice
	}
	switch appErr.Kind {
	case apperror.KindValidation, apperror.KindConflict, apperror.KindForbidden, apperror.KindNotFound:
		if appErr.Message != "" && appErr.Message != http.StatusText(appErr.Code) {
			return appErr.Message
		}
	}
	return FailureNotice
}
