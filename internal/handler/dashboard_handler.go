package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
	"github.com/locvowork/convexhub/apigateway/internal/logger"
	"github.com/locvowork/convexhub/apigateway/internal/service"
	"github.com/locvowork/convexhub/apigateway/internal/service/serviceutils"
)

// panelEntries is how many presses the dashboard panel lists.
const panelEntries = 4

type DashboardHandler struct {
	tasks   service.TaskService
	presses service.ButtonPressService
}

func NewDashboardHandler(tasks service.TaskService, presses service.ButtonPressService) *DashboardHandler {
	return &DashboardHandler{tasks: tasks, presses: presses}
}

type taskView struct {
	ID     string
	Text   string
	Status string
	Badge  string
}

type pressView struct {
	ID     string
	When   string
	Source string
}

type dashboardView struct {
	Stats        domain.TaskStats
	Tasks        []taskView
	PressTotal   int
	Presses      []pressView
	PanelFailure bool
}

func newTaskViews(tasks []domain.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		v := taskView{ID: t.ID, Text: t.Text, Status: "pending", Badge: "Waiting"}
		if t.IsCompleted {
			v.Status, v.Badge = "complete", "Done"
		}
		views = append(views, v)
	}
	return views
}

// displayTime shows an ISO timestamp in a readable form and falls back to the
// raw string when it does not parse.
func displayTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("Jan 2, 2006 15:04:05 MST")
}

func newPressViews(entries []domain.PressEntry) []pressView {
	if len(entries) > panelEntries {
		entries = entries[:panelEntries]
	}
	views := make([]pressView, 0, len(entries))
	for _, e := range entries {
		v := pressView{ID: e.ID, When: "just now", Source: "auto"}
		switch {
		case e.PressedAt != nil:
			v.When = displayTime(*e.PressedAt)
			v.Source = "manual"
		case e.CreatedAt != nil:
			v.When = displayTime(*e.CreatedAt)
		}
		views = append(views, v)
	}
	return views
}

// IndexHandler handles GET /
func (h *DashboardHandler) IndexHandler(c echo.Context) error {
	ctx := c.Request().Context()

	tasks, err := h.tasks.List(ctx)
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to load tasks for dashboard: %v", err))
		return c.String(serviceutils.StatusFromError(err), "The task store is not reachable right now.")
	}

	view := dashboardView{
		Stats: domain.NewTaskStats(tasks),
		Tasks: newTaskViews(tasks),
	}

	// The press panel degrades on its own; the task list still renders.
	summary, err := h.presses.Summary(ctx)
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to load press summary for dashboard: %v", err))
		view.PanelFailure = true
	} else {
		view.PressTotal = summary.Total
		view.Presses = newPressViews(summary.Entries)
	}

	return c.Render(http.StatusOK, "dashboard.html", view)
}

// PressFormHandler handles POST /press from the dashboard button.
func (h *DashboardHandler) PressFormHandler(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.presses.Press(ctx); err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to record press: %v", err))
		return c.String(serviceutils.StatusFromError(err), "The press was not recorded.")
	}

	return c.Redirect(http.StatusSeeOther, "/")
}
