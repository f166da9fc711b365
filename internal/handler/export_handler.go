package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
	"github.com/locvowork/convexhub/apigateway/internal/logger"
	"github.com/locvowork/convexhub/apigateway/internal/service"
	"github.com/locvowork/convexhub/apigateway/internal/service/serviceutils"
	"github.com/locvowork/convexhub/apigateway/pkg/simpleexcel"
)

// DefaultExportLayout is used when no layout file is configured. Custom
// layouts must keep the section ids tasks, press_total and presses.
const DefaultExportLayout = `
sheets:
  - name: "Tasks"
    sections:
      - id: "tasks"
        title: "Task list"
        show_header: true
        title_style:
          font:
            bold: true
            color: "#FFFFFF"
          fill:
            color: "#0F172A"
        header_style:
          font:
            bold: true
          fill:
            color: "#E2E8F0"
        columns:
          - field_name: "ID"
            header: "ID"
            width: 24
          - field_name: "Text"
            header: "Task"
            width: 48
          - field_name: "Status"
            header: "Status"
            width: 12
          - field_name: "CreatedAt"
            header: "Created at"
            width: 28
  - name: "Button presses"
    sections:
      - id: "press_total"
        type: "title"
        title: "Total presses"
        title_style:
          font:
            bold: true
            color: "#020617"
          fill:
            color: "#34D399"
      - id: "presses"
        title: "Most recent presses"
        show_header: true
        header_style:
          font:
            bold: true
        columns:
          - field_name: "ID"
            header: "ID"
            width: 24
          - field_name: "PressedAt"
            header: "Pressed at"
            width: 28
          - field_name: "CreatedAt"
            header: "Created at"
            width: 28
`

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type taskExportRow struct {
	ID        string
	Text      string
	Status    string
	CreatedAt string
}

type ExportHandler struct {
	tasks       service.TaskService
	presses     service.ButtonPressService
	newExporter func() (*simpleexcel.DataExporter, error)
}

// NewExportHandler builds a fresh exporter per download from layoutFile, or
// from DefaultExportLayout when layoutFile is empty. The layout is loaded
// once here so a broken one fails at startup; later edits to the file are
// picked up on the next download.
func NewExportHandler(tasks service.TaskService, presses service.ButtonPressService, layoutFile string) (*ExportHandler, error) {
	h := &ExportHandler{
		tasks:   tasks,
		presses: presses,
		newExporter: func() (*simpleexcel.DataExporter, error) {
			return simpleexcel.NewDataExporterFromYaml(DefaultExportLayout)
		},
	}
	if layoutFile != "" {
		h.newExporter = func() (*simpleexcel.DataExporter, error) {
			return simpleexcel.NewDataExporterFromYamlFile(layoutFile)
		}
	}

	if _, err := h.newExporter(); err != nil {
		return nil, fmt.Errorf("invalid export layout: %w", err)
	}
	return h, nil
}

// DashboardExportHandler handles GET /api/v1/dashboard/export
func (h *ExportHandler) DashboardExportHandler(c echo.Context) error {
	ctx := c.Request().Context()

	tasks, err := h.tasks.List(ctx)
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to list tasks for export: %v", err))
		return serviceutils.ResponseStoreError(c, "failed to list tasks", err)
	}
	summary, err := h.presses.Summary(ctx)
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to summarize presses for export: %v", err))
		return serviceutils.ResponseStoreError(c, "failed to summarize presses", err)
	}

	rows := make([]taskExportRow, 0, len(tasks))
	for _, t := range tasks {
		row := taskExportRow{ID: t.ID, Text: t.Text, Status: "pending"}
		if t.IsCompleted {
			row.Status = "complete"
		}
		if t.CreatedAt != nil {
			row.CreatedAt = domain.FormatTimestamp(*t.CreatedAt)
		}
		rows = append(rows, row)
	}

	exporter, err := h.newExporter()
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to load export layout: %v", err))
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to parse export layout", err)
	}
	exporter.
		BindSectionData("tasks", rows).
		BindSectionData("presses", summary.Entries).
		SetSectionTitle("press_total", fmt.Sprintf("Total presses: %d", summary.Total))

	excelBytes, err := exporter.ToBytes()
	if err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("failed to generate export: %v", err))
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate Excel file", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="dashboard.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(excelBytes)))
	return c.Blob(http.StatusOK, xlsxContentType, excelBytes)
}
