package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

var testClock = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

func newItemService(items *mockItemRepo, comments *mockCommentRepo, users *mockUserRepo, dispatcher *recordingDispatcher) *WorkItemService {
	return NewWorkItemService(WorkItemDependencies{
		ItemRepo:    items,
		CommentRepo: comments,
		UserRepo:    users,
		Dispatcher:  dispatcher,
		Now:         func() time.Time { return testClock },
	})
}

func manager() *domain.User {
	return &domain.User{ID: "mgr-1", Name: "Mara", Role: domain.RoleManager, Active: true}
}

func executor(branch string) *domain.User {
	return &domain.User{ID: "exe-1", Name: "Ed", Role: domain.RoleExecutor, BranchID: &branch, Active: true}
}

func backlogItem(branch string) *domain.WorkItem {
	assignee := "exe-1"
	return &domain.WorkItem{
		ID:         "item-1",
		Type:       domain.ItemTypeSupport,
		Title:      "Printer jammed",
		Status:     domain.ItemStatusBacklog,
		Priority:   domain.ItemPriorityNormal,
		ReporterID: "req-1",
		AssigneeID: &assignee,
		BranchID:   &branch,
	}
}

func TestApplyEnteringDoneStampsCompletion(t *testing.T) {
	items := new(mockItemRepo)
	dispatcher := &recordingDispatcher{}
	svc := newItemService(items, new(mockCommentRepo), new(mockUserRepo), dispatcher)

	item := backlogItem("b1")
	item.Status = domain.ItemStatusReview
	items.On("GetByID", mock.Anything, "item-1").Return(item, nil).Once()
	items.On("Update", mock.Anything, mock.MatchedBy(func(i *domain.WorkItem) bool {
		return i.Status == domain.ItemStatusDone && i.CompletedAt != nil && i.CompletedAt.Equal(testClock)
	})).Return(nil).Once()

	done := domain.ItemStatusDone
	updated, err := svc.Apply(context.Background(), executor("b1"), "item-1", ItemApplyInput{Status: &done})

	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, domain.ItemStatusDone, updated.Status)
	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, domain.KindTicketStatusChanged, dispatcher.published[0].Kind)
	items.AssertExpectations(t)
}

func TestApplyLeavingDoneClearsCompletionAndAnnouncesReopen(t *testing.T) {
	items := new(mockItemRepo)
	dispatcher := &recordingDispatcher{}
	svc := newItemService(items, new(mockCommentRepo), new(mockUserRepo), dispatcher)

	completed := testClock.Add(-24 * time.Hour)
	item := backlogItem("b1")
	item.Status = domain.ItemStatusDone
	item.CompletedAt = &completed
	items.On("GetByID", mock.Anything, "item-1").Return(item, nil).Once()
	items.On("Update", mock.Anything, mock.MatchedBy(func(i *domain.WorkItem) bool {
		return i.Status == domain.ItemStatusInProgress && i.CompletedAt == nil
	})).Return(nil).Once()

	inProgress := domain.ItemStatusInProgress
	updated, err := svc.Apply(context.Background(), executor("b1"), "item-1", ItemApplyInput{Status: &inProgress})

	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
	require.Len(t, dispatcher.published, 2)
	assert.Equal(t, domain.KindTicketStatusChanged, dispatcher.published[0].Kind)
	assert.Equal(t, domain.KindTicketReopened, dispatcher.published[1].Kind)
	items.AssertExpectations(t)
}

func TestApplyWithoutDeltaPersistsAndEmitsNothing(t *testing.T) {
	items := new(mockItemRepo)
	dispatcher := &recordingDispatcher{}
	svc := newItemService(items, new(mockCommentRepo), new(mockUserRepo), dispatcher)

	item := backlogItem("b1")
	items.On("GetByID", mock.Anything, "item-1").Return(item, nil).Once()

	sameStatus := item.Status
	samePriority := item.Priority
	sameTitle := item.Title
	_, err := svc.Apply(context.Background(), executor("b1"), "item-1", ItemApplyInput{
		Status:   &sameStatus,
		Priority: &samePriority,
		Title:    &sameTitle,
	})

	require.NoError(t, err)
	assert.Empty(t, dispatcher.published)
	items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssignRequiresManager(t *testing.T) {
	svc := newItemService(new(mockItemRepo), new(mockCommentRepo), new(mockUserRepo), &recordingDispatcher{})

	assignee := "exe-2"
	_, err := svc.Assign(context.Background(), executor("b1"), "item-1", &assignee)

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, "item.assign", domainErr.Details["action"])
	assert.Equal(t, "manager", domainErr.Details["required_role"])
}

func TestAssignRejectsNonExecutor(t *testing.T) {
	items := new(mockItemRepo)
	users := new(mockUserRepo)
	svc := newItemService(items, new(mockCommentRepo), users, &recordingDispatcher{})

	items.On("GetByID", mock.Anything, "item-1").Return(backlogItem("b1"), nil).Once()
	users.On("GetByID", mock.Anything, "req-9").Return(&domain.User{
		ID: "req-9", Role: domain.RoleRequester, Active: true,
	}, nil).Once()

	requesterID := "req-9"
	_, err := svc.Assign(context.Background(), manager(), "item-1", &requesterID)

	require.Error(t, err)
	assert.Equal(t, "INVALID_ASSIGNEE", apperrors.ToDomainError(err).Code)
	items.AssertNotCalled(t, "AssignIfChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignUnchangedEmitsNothing(t *testing.T) {
	items := new(mockItemRepo)
	users := new(mockUserRepo)
	dispatcher := &recordingDispatcher{}
	svc := newItemService(items, new(mockCommentRepo), users, dispatcher)

	item := backlogItem("b1")
	items.On("GetByID", mock.Anything, "item-1").Return(item, nil).Once()
	users.On("GetByID", mock.Anything, "exe-1").Return(executor("b1"), nil).Once()
	assigneeID := "exe-1"
	items.On("AssignIfChanged", mock.Anything, "item-1", &assigneeID).Return(nil, false, nil).Once()

	result, err := svc.Assign(context.Background(), manager(), "item-1", &assigneeID)

	require.NoError(t, err)
	assert.Equal(t, item, result)
	assert.Empty(t, dispatcher.published)
}

func TestAssignChangeNotifiesOldAndNewParties(t *testing.T) {
	items := new(mockItemRepo)
	users := new(mockUserRepo)
	dispatcher := &recordingDispatcher{}
	svc := newItemService(items, new(mockCommentRepo), users, dispatcher)

	before := backlogItem("b1")
	oldAssignee := "exe-old"
	before.AssigneeID = &oldAssignee
	items.On("GetByID", mock.Anything, "item-1").Return(before, nil).Once()

	newAssignee := "exe-1"
	users.On("GetByID", mock.Anything, "exe-1").Return(executor("b1"), nil).Once()
	after := backlogItem("b1")
	items.On("AssignIfChanged", mock.Anything, "item-1", &newAssignee).Return(after, true, nil).Once()

	_, err := svc.Assign(context.Background(), manager(), "item-1", &newAssignee)

	require.NoError(t, err)
	require.Len(t, dispatcher.published, 1)
	event := dispatcher.published[0]
	assert.Equal(t, domain.KindTicketReassigned, event.Kind)
	assert.ElementsMatch(t, []string{"exe-1", "req-1", "exe-old"}, event.Recipients)
}

func TestCommentExcludesActorFromRecipients(t *testing.T) {
	items := new(mockItemRepo)
	comments := new(mockCommentRepo)
	dispatcher := &recordingDispatcher{}
	svc := newItemService(items, comments, new(mockUserRepo), dispatcher)

	items.On("GetByID", mock.Anything, "item-1").Return(backlogItem("b1"), nil).Once()
	comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.ItemComment) bool {
		return c.ItemID == "item-1" && c.Body == "looking into it"
	})).Return(nil).Once()

	_, err := svc.Comment(context.Background(), executor("b1"), "item-1", "looking into it", nil)

	require.NoError(t, err)
	require.Len(t, dispatcher.published, 1)
	event := dispatcher.published[0]
	assert.Equal(t, domain.KindTicketCommented, event.Kind)
	// The actor is the assignee; only the reporter remains.
	assert.Equal(t, []string{"req-1"}, event.Recipients)
	comments.AssertExpectations(t)
}
