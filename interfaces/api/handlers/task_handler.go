package handlers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"taskmanager-api/domain/dto"
	"taskmanager-api/domain/models"
	"taskmanager-api/domain/services"
	"taskmanager-api/interfaces/api/middleware"
	"taskmanager-api/pkg/logger"
	"taskmanager-api/pkg/utils"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor := middleware.ActorFromContext(c)

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	task, err := h.taskService.CreateTask(ctx, actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskID, ok := parseTaskID(c)
	if !ok {
		return utils.NotFoundResponse(c, "")
	}

	task, err := h.taskService.GetTask(c.UserContext(), middleware.ActorFromContext(c), taskID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// UpdateTask handles PUT; every field must be supplied.
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	return h.update(c, h.taskService.UpdateTask)
}

// PatchTask handles PATCH; omitted fields keep their values.
func (h *TaskHandler) PatchTask(c *fiber.Ctx) error {
	return h.update(c, h.taskService.PatchTask)
}

type updateFunc func(ctx context.Context, actor *models.Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error)

func (h *TaskHandler) update(c *fiber.Ctx, apply updateFunc) error {
	ctx := c.UserContext()
	taskID, ok := parseTaskID(c)
	if !ok {
		return utils.NotFoundResponse(c, "")
	}

	var req dto.UpdateTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			logger.WarnContext(ctx, "Invalid request body", "task_id", taskID, "error", err)
			return utils.BadRequestResponse(c, "Invalid request body")
		}
	}

	task, err := apply(ctx, middleware.ActorFromContext(c), taskID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	taskID, ok := parseTaskID(c)
	if !ok {
		return utils.NotFoundResponse(c, "")
	}

	if err := h.taskService.DeleteTask(c.UserContext(), middleware.ActorFromContext(c), taskID); err != nil {
		return respondError(c, err)
	}

	return utils.NoContentResponse(c)
}

func (h *TaskHandler) CompleteTask(c *fiber.Ctx) error {
	taskID, ok := parseTaskID(c)
	if !ok {
		return utils.NotFoundResponse(c, "")
	}

	task, err := h.taskService.CompleteTask(c.UserContext(), middleware.ActorFromContext(c), taskID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// ListTasks serves GET /tasks/.
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	return h.list(c, false)
}

// ListMyTasks serves GET /tasks/my/, filtered to the caller's tasks.
func (h *TaskHandler) ListMyTasks(c *fiber.Ctx) error {
	return h.list(c, true)
}

func (h *TaskHandler) list(c *fiber.Ctx, mine bool) error {
	query := dto.TaskListQuery{
		Mine:   mine,
		Status: c.Query("status"),
	}

	fieldErrs := map[string]string{}
	var err error
	if query.Page, err = queryInt(c, "page"); err != nil {
		fieldErrs["page"] = "Invalid page."
	}
	if query.PageSize, err = queryInt(c, "page_size"); err != nil {
		fieldErrs["page_size"] = "A valid integer is required."
	}
	if len(fieldErrs) > 0 {
		return utils.ValidationErrorResponse(c, fieldErrs)
	}

	page, err := h.taskService.ListTasks(c.UserContext(), middleware.ActorFromContext(c), query)
	if err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskListResponse{
		Count:    page.Count,
		Next:     pageLink(c, page.NextPage),
		Previous: pageLink(c, page.PreviousPage),
		Results:  page.Results,
	})
}

func parseTaskID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// pageLink rebuilds the request URL with page replaced; page 1 drops the
// parameter. A nil page yields nil.
func pageLink(c *fiber.Ctx, page *int) *string {
	if page == nil {
		return nil
	}

	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		values = url.Values{}
	}
	if *page == 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(*page))
	}

	link := c.BaseURL() + c.Path()
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return &link
}
