package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/internal/workflow"
	"go-jobmatch-web/pkg/apperror"
)

type MockUpdater struct {
	mock.Mock
}

func (m *MockUpdater) UpdateStatus(ctx context.Context, id domain.ID, status domain.ApplicationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func TestRequestStatusChange_FailureKeepsDisplayedStatus(t *testing.T) {
	updater := new(MockUpdater)
	updater.On("UpdateStatus", mock.Anything, domain.ID("1"), domain.StatusReviewed).
		Return(apperror.Network(errors.New("connection refused")))
	wf := workflow.New(updater, nil, nil)

	outcome, err := wf.RequestStatusChange(context.Background(), "view-a", "1", domain.StatusPending, domain.StatusReviewed)

	require.Error(t, err)
	assert.Equal(t, domain.StatusPending, outcome.Displayed)
	assert.False(t, outcome.Acknowledged)
	assert.Equal(t, workflow.FailureNotice, outcome.Notice)
	assert.Empty(t, wf.History().Entries("view-a", "1"))
	updater.AssertExpectations(t)
}

func TestRequestStatusChange_SuccessAppliesTarget(t *testing.T) {
	updater := new(MockUpdater)
	updater.On("UpdateStatus", mock.Anything, domain.ID("2"), domain.StatusInterview).Return(nil)
	wf := workflow.New(updater, nil, nil)

	outcome, err := wf.RequestStatusChange(context.Background(), "view-a", "2", domain.StatusReviewed, domain.StatusInterview)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterview, outcome.Displayed)
	assert.True(t, outcome.Acknowledged)
	assert.Equal(t, "Status updated to Interview", outcome.Notice)

	history := wf.History().Entries("view-a", "2")
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusReviewed, history[0].Status)
	assert.Equal(t, domain.StatusInterview, history[1].Status)
	updater.AssertExpectations(t)
}

func TestRequestStatusChange_AnyStatusToAny(t *testing.T) {
	for _, from := range domain.AllApplicationStatuses() {
		for _, to := range domain.AllApplicationStatuses() {
			updater := new(MockUpdater)
			updater.On("UpdateStatus", mock.Anything, domain.ID("9"), to).Return(nil)
			wf := workflow.New(updater, nil, nil)

			outcome, err := wf.RequestStatusChange(context.Background(), "v", "9", from, to)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, outcome.Displayed)
		}
	}
}

func TestRequestStatusChange_InvalidTargetSkipsBackend(t *testing.T) {
	updater := new(MockUpdater)
	wf := workflow.New(updater, nil, nil)

	outcome, err := wf.RequestStatusChange(context.Background(), "v", "3", domain.StatusPending, "hired")

	assert.ErrorIs(t, err, workflow.ErrInvalidStatus)
	assert.Equal(t, domain.StatusPending, outcome.Displayed)
	updater.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestStatusChange_BackendMessageBecomesNotice(t *testing.T) {
	updater := new(MockUpdater)
	updater.On("UpdateStatus", mock.Anything, domain.ID("4"), domain.StatusAccepted).
		Return(apperror.FromStatus(400, "Application is closed"))
	wf := workflow.New(updater, nil, nil)

	outcome, err := wf.RequestStatusChange(context.Background(), "v", "4", domain.StatusInterview, domain.StatusAccepted)

	require.Error(t, err)
	assert.Equal(t, "Application is closed", outcome.Notice)
	assert.Equal(t, domain.StatusInterview, outcome.Displayed)
}

func TestRequestStatusChange_UnauthorizedKeepsGenericNotice(t *testing.T) {
	updater := new(MockUpdater)
	updater.On("UpdateStatus", mock.Anything, domain.ID("5"), domain.StatusRejected).
		Return(apperror.FromStatus(401, "Token expired"))
	wf := workflow.New(updater, nil, nil)

	outcome, err := wf.RequestStatusChange(context.Background(), "v", "5", domain.StatusPending, domain.StatusRejected)

	assert.True(t, apperror.IsUnauthorized(err))
	assert.Equal(t, workflow.FailureNotice, outcome.Notice)
}

func TestRequestStatusChange_RejectsDuplicateWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	updater := new(MockUpdater)
	updater.On("UpdateStatus", mock.Anything, domain.ID("6"), domain.StatusReviewed).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()
	tracker := workflow.NewTracker()
	wf := workflow.New(updater, tracker, nil)

	done := make(chan domain.StatusOutcome)
	go func() {
		outcome, _ := wf.RequestStatusChange(context.Background(), "v", "6", domain.StatusPending, domain.StatusReviewed)
		done <- outcome
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the backend")
	}
	assert.True(t, wf.Control("v", "6", domain.StatusPending).Updating)

	outcome, err := wf.RequestStatusChange(context.Background(), "v", "6", domain.StatusPending, domain.StatusReviewed)
	assert.ErrorIs(t, err, workflow.ErrInFlight)
	assert.Equal(t, domain.StatusPending, outcome.Displayed)

	// another view of the same application is independent
	assert.False(t, tracker.InFlight("other", "6"))

	close(release)
	first := <-done
	assert.Equal(t, domain.StatusReviewed, first.Displayed)
	assert.False(t, wf.Control("v", "6", domain.StatusReviewed).Updating)
	updater.AssertExpectations(t)
}

func TestRequestStatusChange_UnknownDisplayedIsNotRecorded(t *testing.T) {
	updater := new(MockUpdater)
	updater.On("UpdateStatus", mock.Anything, domain.ID("7"), domain.StatusAccepted).Return(nil)
	wf := workflow.New(updater, nil, nil)

	outcome, err := wf.RequestStatusChange(context.Background(), "v", "7", "", domain.StatusAccepted)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, outcome.Displayed)
	history := wf.History().Entries("v", "7")
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusAccepted, history[0].Status)
}

func TestHistory_SeedOnceAndEvictOldestView(t *testing.T) {
	h := workflow.NewHistory(2)
	h.Seed("a", "1", domain.StatusPending)
	h.Seed("a", "1", domain.StatusAccepted)
	require.Len(t, h.Entries("a", "1"), 1)
	assert.Equal(t, domain.StatusPending, h.Entries("a", "1")[0].Status)

	h.Seed("b", "1", domain.StatusPending)
	h.Seed("c", "1", domain.StatusPending)
	assert.Nil(t, h.Entries("a", "1"))
	assert.Len(t, h.Entries("c", "1"), 1)
}
