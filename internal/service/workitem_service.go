package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/policy"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// WorkItemService owns the work item lifecycle: creation, the status state
// machine, assignment, and comments. Every successful mutation that changes
// state publishes exactly one lifecycle event.
type WorkItemService struct {
	items      repository.WorkItemRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// WorkItemDependencies bundles collaborators for the work item service.
type WorkItemDependencies struct {
	ItemRepo    repository.WorkItemRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Now         func() time.Time
}

// ItemCreateInput describes work item creation payload.
type ItemCreateInput struct {
	Type        domain.ItemType
	Title       string
	Description string
	Priority    domain.ItemPriority
	BranchID    *string
	AssigneeID  *string
	DueAt       *time.Time
}

// ItemApplyInput describes a partial update. Nil fields are left alone;
// ClearDueAt removes the deadline.
type ItemApplyInput struct {
	Title       *string
	Description *string
	Status      *domain.ItemStatus
	Priority    *domain.ItemPriority
	DueAt       *time.Time
	ClearDueAt  bool
}

// ItemListFilter describes listing filters as seen by the transport layer.
type ItemListFilter struct {
	BranchID   *string
	AssigneeID *string
	ReporterID *string
	Type       *domain.ItemType
	Status     *domain.ItemStatus
	Limit      int
	Offset     int
}

// NewWorkItemService constructs the service.
func NewWorkItemService(deps WorkItemDependencies) *WorkItemService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &WorkItemService{
		items:      deps.ItemRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// Create files a new work item in backlog. Setting an assignee at creation
// is an assignment and requires the manager role.
func (s *WorkItemService) Create(ctx context.Context, actor *domain.User, input ItemCreateInput) (*domain.WorkItem, error) {
	branchID := input.BranchID
	if branchID == nil {
		branchID = actor.BranchID
	}
	if err := policy.Allow(actor.Role, policy.ActionItemCreate, policy.Scope{
		ActorBranch: actor.BranchID,
		ItemBranch:  branchID,
	}); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if input.Type != domain.ItemTypeSupport && input.Type != domain.ItemTypeFeature {
		return nil, apperrors.NewValidationError("unknown item type", map[string]any{"type": input.Type})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.ItemPriorityNormal
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	var assignee *domain.User
	if input.AssigneeID != nil {
		if err := policy.Allow(actor.Role, policy.ActionItemAssign, policy.Scope{}); err != nil {
			return nil, err
		}
		var err error
		assignee, err = s.resolveAssignee(ctx, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
	}

	item := &domain.WorkItem{
		Type:        input.Type,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.ItemStatusBacklog,
		Priority:    priority,
		ReporterID:  actor.ID,
		AssigneeID:  input.AssigneeID,
		BranchID:    branchID,
		DueAt:       input.DueAt,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}

	if assignee != nil {
		s.publish(ctx, domain.KindTicketAssigned, item, actor, events.Payload{
			ItemTitle:    item.Title,
			ItemType:     item.Type,
			Priority:     item.Priority,
			AssigneeName: assignee.Name,
			ActorName:    actor.Name,
		})
	}
	return item, nil
}

// Get loads a single item visible to the actor.
func (s *WorkItemService) Get(ctx context.Context, actor *domain.User, itemID string) (*domain.WorkItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := policy.Allow(actor.Role, policy.ActionItemRead, s.scopeFor(actor, item)); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns items matching the filter, narrowed to the actor's branch for
// non-managers.
func (s *WorkItemService) List(ctx context.Context, actor *domain.User, filter ItemListFilter) ([]domain.WorkItem, error) {
	repoFilter := repository.WorkItemFilter{
		BranchID:   filter.BranchID,
		AssigneeID: filter.AssigneeID,
		ReporterID: filter.ReporterID,
		Type:       filter.Type,
		Status:     filter.Status,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if actor.Role != domain.RoleManager {
		repoFilter.BranchID = actor.BranchID
	}
	items, err := s.items.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Apply performs a partial update. Only fields that actually differ from the
// stored row count as changes; an Apply that changes nothing persists
// nothing and emits nothing. Entering done stamps CompletedAt, leaving done
// clears it and additionally announces the reopen.
func (s *WorkItemService) Apply(ctx context.Context, actor *domain.User, itemID string, input ItemApplyInput) (*domain.WorkItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := policy.Allow(actor.Role, policy.ActionItemUpdate, s.scopeFor(actor, item)); err != nil {
		return nil, err
	}

	oldStatus := item.Status
	statusChanged := false
	fieldChanged := false

	if input.Status != nil && *input.Status != item.Status {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		item.Status = *input.Status
		statusChanged = true
		if item.Status == domain.ItemStatusDone {
			completed := s.now().UTC()
			item.CompletedAt = &completed
		} else {
			item.CompletedAt = nil
		}
	}
	if input.Title != nil {
		if title := strings.TrimSpace(*input.Title); title != "" && title != item.Title {
			item.Title = title
			fieldChanged = true
		}
	}
	if input.Description != nil && *input.Description != item.Description {
		item.Description = *input.Description
		fieldChanged = true
	}
	if input.Priority != nil && *input.Priority != item.Priority {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		item.Priority = *input.Priority
		fieldChanged = true
	}
	if input.ClearDueAt {
		if item.DueAt != nil {
			item.DueAt = nil
			fieldChanged = true
		}
	} else if input.DueAt != nil && (item.DueAt == nil || !input.DueAt.Equal(*item.DueAt)) {
		item.DueAt = input.DueAt
		fieldChanged = true
	}

	if !statusChanged && !fieldChanged {
		return item, nil
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}

	payload := events.Payload{
		ItemTitle: item.Title,
		ItemType:  item.Type,
		Priority:  item.Priority,
		OldStatus: oldStatus,
		NewStatus: item.Status,
		ActorName: actor.Name,
		DueAt:     item.DueAt,
	}
	switch {
	case statusChanged:
		s.publish(ctx, domain.KindTicketStatusChanged, item, actor, payload)
		if oldStatus == domain.ItemStatusDone {
			s.publish(ctx, domain.KindTicketReopened, item, actor, payload)
		}
	default:
		s.publish(ctx, domain.KindTicketUpdated, item, actor, payload)
	}
	return item, nil
}

// Assign sets or clears the assignee through a single compare-and-set
// statement. A no-op assignment (same assignee) emits nothing. Assigning a
// user without the executor capability is rejected.
func (s *WorkItemService) Assign(ctx context.Context, actor *domain.User, itemID string, assigneeID *string) (*domain.WorkItem, error) {
	if err := policy.Allow(actor.Role, policy.ActionItemAssign, policy.Scope{}); err != nil {
		return nil, err
	}
	before, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var assignee *domain.User
	if assigneeID != nil {
		assignee, err = s.resolveAssignee(ctx, *assigneeID)
		if err != nil {
			return nil, err
		}
	}

	item, changed, err := s.items.AssignIfChanged(ctx, itemID, assigneeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !changed {
		return before, nil
	}

	payload := events.Payload{
		ItemTitle: item.Title,
		ItemType:  item.Type,
		Priority:  item.Priority,
		ActorName: actor.Name,
	}
	switch {
	case assignee == nil:
		s.publishTo(ctx, domain.KindTicketUpdated, item, actor, recipientSet(before, actor.ID), payload)
	case before.AssigneeID == nil:
		payload.AssigneeName = assignee.Name
		s.publish(ctx, domain.KindTicketAssigned, item, actor, payload)
	default:
		payload.AssigneeName = assignee.Name
		// The outgoing assignee hears about the handoff too.
		recipients := appendUnique(recipientSet(item, actor.ID), *before.AssigneeID, actor.ID)
		s.publishTo(ctx, domain.KindTicketReassigned, item, actor, recipients, payload)
	}
	return item, nil
}

// Comment appends a comment and notifies the item's parties. Mentioned user
// ids each get a dedicated mention event.
func (s *WorkItemService) Comment(ctx context.Context, actor *domain.User, itemID, body string, mentions []string) (*domain.ItemComment, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := policy.Allow(actor.Role, policy.ActionItemComment, s.scopeFor(actor, item)); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body is required", nil)
	}

	comment := &domain.ItemComment{
		ItemID: item.ID,
		UserID: actor.ID,
		Body:   body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	payload := events.Payload{
		ItemTitle:      item.Title,
		ItemType:       item.Type,
		Priority:       item.Priority,
		ActorName:      actor.Name,
		CommentPreview: bodyPreview(body, 120),
	}
	s.publish(ctx, domain.KindTicketCommented, item, actor, payload)

	for _, userID := range dedupe(mentions) {
		if userID == actor.ID {
			continue
		}
		if _, err := s.users.GetByID(ctx, userID); err != nil {
			continue
		}
		s.publishTo(ctx, domain.KindMention, item, actor, []string{userID}, payload)
	}
	return comment, nil
}

// ListComments returns an item's comments oldest first.
func (s *WorkItemService) ListComments(ctx context.Context, actor *domain.User, itemID string) ([]domain.ItemComment, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := policy.Allow(actor.Role, policy.ActionItemRead, s.scopeFor(actor, item)); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByItem(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

func (s *WorkItemService) resolveAssignee(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewInvalidAssignee(userID)
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active || !user.CanExecute() {
		return nil, apperrors.NewInvalidAssignee(userID)
	}
	return user, nil
}

func (s *WorkItemService) scopeFor(actor *domain.User, item *domain.WorkItem) policy.Scope {
	scope := policy.Scope{
		ActorBranch: actor.BranchID,
		ItemBranch:  item.BranchID,
	}
	if item.AssigneeID != nil && *item.AssigneeID == actor.ID {
		scope.ActorIsAssignee = true
	}
	return scope
}

func (s *WorkItemService) publish(ctx context.Context, kind domain.NotificationKind, item *domain.WorkItem, actor *domain.User, payload events.Payload) {
	s.publishTo(ctx, kind, item, actor, recipientSet(item, actor.ID), payload)
}

func (s *WorkItemService) publishTo(ctx context.Context, kind domain.NotificationKind, item *domain.WorkItem, actor *domain.User, recipients []string, payload events.Payload) {
	if s.dispatcher == nil || len(recipients) == 0 {
		return
	}
	actorID := actor.ID
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		ItemID:     &item.ID,
		ActorID:    &actorID,
		Recipients: recipients,
		Payload:    payload,
		Timestamp:  s.now(),
	})
}

// recipientSet is the interested-party rule: assignee and reporter, minus
// whoever performed the action.
func recipientSet(item *domain.WorkItem, actorID string) []string {
	var recipients []string
	if item.AssigneeID != nil && *item.AssigneeID != actorID {
		recipients = append(recipients, *item.AssigneeID)
	}
	if item.ReporterID != actorID {
		recipients = appendUnique(recipients, item.ReporterID, actorID)
	}
	return recipients
}

func appendUnique(recipients []string, userID, actorID string) []string {
	if userID == actorID {
		return recipients
	}
	for _, existing := range recipients {
		if existing == userID {
			return recipients
		}
	}
	return append(recipients, userID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var result []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func bodyPreview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max-3] + "..."
}
