package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/convexhub/apigateway/internal/logger"
	"github.com/locvowork/convexhub/apigateway/internal/service"
	"github.com/locvowork/convexhub/apigateway/internal/service/serviceutils"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListHandler handles GET /api/v1/tasks
func (h *TaskHandler) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()

	tasks, err := h.svc.List(ctx)
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to list tasks: %v", err))
		return serviceutils.ResponseStoreError(c, "failed to list tasks", err)
	}

	return c.JSON(http.StatusOK, tasks)
}
