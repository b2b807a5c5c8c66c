package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"taskmanager-api/domain/apperrors"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/policy"
	"taskmanager-api/domain/ports"
	"taskmanager-api/domain/repositories"
	"taskmanager-api/domain/services"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

const (
	msgRequired    = "This field is required."
	msgNotNull     = "This field may not be null."
	msgBlank       = "This field may not be blank."
	msgTitleLength = "Ensure this field has no more than 200 characters."
	msgInvalidPage = "Invalid page."
)

type TaskServiceImpl struct {
	taskRepo        repositories.TaskRepository
	cache           ports.TaskCachePort
	events          ports.TaskEventPublisherPort
	defaultPageSize int
	maxPageSize     int
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	cache ports.TaskCachePort,
	events ports.TaskEventPublisherPort,
	defaultPageSize, maxPageSize int,
) services.TaskService {
	if defaultPageSize < 1 {
		defaultPageSize = 10
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &TaskServiceImpl{
		taskRepo:        taskRepo,
		cache:           cache,
		events:          events,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor *models.Actor, req *dto.CreateTaskRequest) (*models.Task, error) {
	if err := policy.Permit(actor, nil, policy.OpCreate); err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	title := checkTitle(verr, req.Title, true)
	status := models.TaskStatusNew
	if req.Status.Set {
		status = checkStatus(verr, req.Status)
	}
	if err := verr.OrNil(); err != nil {
		logger.WarnContext(ctx, "Task create rejected", "fields", verr.Fields)
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: normalizeDescription(req.Description),
		Status:      status,
		UserID:      actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		logger.ErrorContext(ctx, "Failed to create task", "user_id", actor.UserID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Task created successfully", "task_id", task.ID, "user_id", actor.UserID)
	s.publish(ctx, ports.TaskEventCreated, actor, task)

	return task, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID) (*models.Task, error) {
	if err := policy.Permit(actor, nil, policy.OpRetrieve); err != nil {
		return nil, err
	}

	if task, found, err := s.cache.Get(ctx, taskID); err != nil {
		logger.WarnContext(ctx, "Task cache read failed", "task_id", taskID, "error", err)
	} else if found {
		return task, nil
	}

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, task); err != nil {
		logger.WarnContext(ctx, "Task cache write failed", "task_id", taskID, "error", err)
		return task, nil
	}

	// A writer may have committed and invalidated between the read and the
	// Set above. Re-read after the Set: any write committed later invalidates
	// on its own, any write committed earlier shows up here.
	current, err := s.loadTask(ctx, taskID)
	if err != nil {
		s.invalidate(ctx, taskID)
		return nil, err
	}
	if !sameRevision(task, current) {
		logger.DebugContext(ctx, "Task changed while caching, dropping entry", "task_id", taskID)
		s.invalidate(ctx, taskID)
	}
	return current, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.authorize(ctx, actor, taskID, policy.OpUpdate)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	title := checkTitle(verr, req.Title, true)
	verr.Check(req.Description.Set, "description", msgRequired)
	var status models.TaskStatus
	if req.Status.Set {
		status = checkStatus(verr, req.Status)
	} else {
		verr.Add("status", msgRequired)
	}
	if err := verr.OrNil(); err != nil {
		logger.WarnContext(ctx, "Task update rejected", "task_id", taskID, "fields", verr.Fields)
		return nil, err
	}

	task.Title = title
	task.Description = normalizeDescription(req.Description)
	task.Status = status

	fields := []repositories.TaskField{
		repositories.TaskFieldTitle,
		repositories.TaskFieldDescription,
		repositories.TaskFieldStatus,
	}
	if err := s.save(ctx, task, fields); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task updated", "task_id", task.ID, "status", task.Status)
	s.publish(ctx, ports.TaskEventUpdated, actor, task)
	return task, nil
}

func (s *TaskServiceImpl) PatchTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.authorize(ctx, actor, taskID, policy.OpPartialUpdate)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	var fields []repositories.TaskField

	if req.Title.Set {
		task.Title = checkTitle(verr, req.Title, false)
		fields = append(fields, repositories.TaskFieldTitle)
	}
	if req.Description.Set {
		task.Description = normalizeDescription(req.Description)
		fields = append(fields, repositories.TaskFieldDescription)
	}
	if req.Status.Set {
		task.Status = checkStatus(verr, req.Status)
		fields = append(fields, repositories.TaskFieldStatus)
	}
	if err := verr.OrNil(); err != nil {
		logger.WarnContext(ctx, "Task patch rejected", "task_id", taskID, "fields", verr.Fields)
		return nil, err
	}

	if len(fields) == 0 {
		return task, nil
	}

	if err := s.save(ctx, task, fields); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task patched", "task_id", task.ID, "fields", len(fields))
	s.publish(ctx, ports.TaskEventUpdated, actor, task)
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID) error {
	task, err := s.authorize(ctx, actor, taskID, policy.OpDelete)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to delete task", "task_id", taskID, "error", err)
		return err
	}
	s.invalidate(ctx, taskID)

	logger.InfoContext(ctx, "Task deleted", "task_id", taskID)
	s.publish(ctx, ports.TaskEventDeleted, actor, task)
	return nil
}

func (s *TaskServiceImpl) CompleteTask(ctx context.Context, actor *models.Actor, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.authorize(ctx, actor, taskID, policy.OpComplete)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted() {
		return nil, apperrors.Conflictf("Already done!")
	}

	changed, err := s.taskRepo.MarkCompleted(ctx, taskID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to complete task", "task_id", taskID, "error", err)
		return nil, err
	}
	if !changed {
		// Lost a race: someone completed or deleted it since the read above.
		if _, err := s.loadTask(ctx, taskID); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "Concurrent completion detected", "task_id", taskID)
		return nil, apperrors.Conflictf("Already done!")
	}
	s.invalidate(ctx, taskID)

	task.Status = models.TaskStatusCompleted
	task.UpdatedAt = time.Now()

	logger.InfoContext(ctx, "Task completed", "task_id", taskID)
	s.publish(ctx, ports.TaskEventCompleted, actor, task)
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, actor *models.Actor, query dto.TaskListQuery) (*dto.TaskPage, error) {
	if err := policy.Permit(actor, nil, policy.OpList); err != nil {
		return nil, err
	}

	page, pageSize := query.Page, query.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = s.defaultPageSize
	}

	verr := apperrors.NewValidationError()
	verr.Check(page >= 1, "page", msgInvalidPage)
	verr.Check(pageSize >= 1 && pageSize <= s.maxPageSize, "page_size", fmt.Sprintf("Ensure this value is between 1 and %d.", s.maxPageSize))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	filter := repositories.TaskFilter{StatusContains: strings.TrimSpace(query.Status)}
	if query.Mine {
		filter.OwnerID = &actor.UserID
	}

	offset := (page - 1) * pageSize
	tasks, total, err := s.taskRepo.Page(ctx, filter, offset, pageSize)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "mine", query.Mine, "error", err)
		return nil, err
	}
	if page > 1 && int64(offset) >= total {
		return nil, apperrors.NotFoundf(msgInvalidPage)
	}

	result := &dto.TaskPage{
		Count:   total,
		Results: dto.TasksToTaskResponses(tasks),
	}
	if int64(offset+len(tasks)) < total {
		next := page + 1
		result.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		result.PreviousPage = &prev
	}
	return result, nil
}

// authorize runs the shared object-operation checks in order:
// authentication, existence, ownership.
func (s *TaskServiceImpl) authorize(ctx context.Context, actor *models.Actor, taskID uuid.UUID, op policy.Operation) (*models.Task, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := policy.Permit(actor, task, op); err != nil {
		logger.WarnContext(ctx, "Task operation forbidden",
			"task_id", taskID,
			"operation", op,
			"owner_id", task.UserID,
		)
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) loadTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to load task", "task_id", taskID, "error", err)
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) save(ctx context.Context, task *models.Task, fields []repositories.TaskField) error {
	if err := s.taskRepo.Update(ctx, task, fields); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to update task", "task_id", task.ID, "error", err)
		return err
	}
	s.invalidate(ctx, task.ID)
	return nil
}

func (s *TaskServiceImpl) invalidate(ctx context.Context, taskID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, taskID); err != nil {
		logger.WarnContext(ctx, "Task cache invalidation failed", "task_id", taskID, "error", err)
	}
}

// publish announces a committed change; a broker failure never fails the request.
func (s *TaskServiceImpl) publish(ctx context.Context, eventType ports.TaskEventType, actor *models.Actor, task *models.Task) {
	event := &ports.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID.String(),
		OwnerID:    task.UserID.String(),
		ActorID:    actor.UserID.String(),
		Status:     string(task.Status),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish task event", "type", eventType, "task_id", task.ID, "error", err)
	}
}

// sameRevision reports whether a and b are the same stored version of a task.
func sameRevision(a, b *models.Task) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) || a.Status != b.Status || a.Title != b.Title {
		return false
	}
	if a.Description == nil || b.Description == nil {
		return a.Description == nil && b.Description == nil
	}
	return *a.Description == *b.Description
}

// checkTitle validates a supplied title and returns it trimmed.
func checkTitle(verr *apperrors.ValidationError, v dto.OptionalString, required bool) string {
	if !v.Set {
		if required {
			verr.Add("title", msgRequired)
		}
		return ""
	}
	if !v.Valid {
		verr.Add("title", msgNotNull)
		return ""
	}
	title := strings.TrimSpace(v.Value)
	if title == "" {
		verr.Add("title", msgBlank)
		return ""
	}
	if err := utils.ValidateVar(title, "max=200"); err != nil {
		verr.Add("title", msgTitleLength)
	}
	return title
}

func checkStatus(verr *apperrors.ValidationError, v dto.OptionalString) models.TaskStatus {
	if !v.Valid {
		verr.Add("status", msgNotNull)
		return ""
	}
	if err := utils.ValidateVar(v.Value, "taskstatus"); err != nil {
		verr.Add("status", `"`+v.Value+`" is not a valid choice.`)
		return ""
	}
	return models.TaskStatus(v.Value)
}

func normalizeDescription(v dto.OptionalString) *string {
	if !v.Valid {
		return nil
	}
	d := strings.TrimSpace(v.Value)
	return &d
}
