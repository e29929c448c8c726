package handler

import (
	"net/http"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService service.TaskService
	events      service.TaskEvents
}

func NewTaskHandler(taskService service.TaskService, events service.TaskEvents) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		events:      events,
	}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("/claim", h.Claim)
		tasks.POST("/share", h.Share)
	}
}

// List returns the caller's current instance of every active task
// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListUserTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, tasks)
}

// Claim credits a completed task's reward
// POST /tasks/claim {taskCode}
func (h *TaskHandler) Claim(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ClaimRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.taskService.ClaimReward(c.Request.Context(), userID, req.TaskCode)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// Share records a share; progress is updated in the background
// POST /tasks/share
func (h *TaskHandler) Share(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.events.Shared(userID)
	respondMessage(c, http.StatusAccepted, "share recorded")
}
