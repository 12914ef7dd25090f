package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/competitor-price-matcher/internal/api/report"
	"github.com/donaldgifford/competitor-price-matcher/internal/store"
	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

const reportLimit = 5000

// ReportHandler renders the latest results as HTML.
type ReportHandler struct {
	store store.Store
	now   func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(s store.Store) *ReportHandler {
	return &ReportHandler{store: s, now: time.Now}
}

// Report handles GET /report. An optional scope query parameter narrows the
// table to one scope.
//
// @Summary Latest results report
// @Tags report
// @Produce html
// @Param scope query string false "Scope ID"
// @Success 200
// @Failure 500 {object} ErrorResponse
// @Router /report [get]
func (h *ReportHandler) Report(c echo.Context) error {
	ctx := c.Request().Context()

	q := &store.ResultQuery{Limit: reportLimit}
	if scope := c.QueryParam("scope"); scope != "" {
		q.ScopeID = &scope
	}

	rows, err := h.store.LatestResults(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "loading results: " + err.Error()})
	}

	var lastRun *domain.Run
	if runs, err := h.store.ListRuns(ctx, 1); err == nil && len(runs) > 0 {
		lastRun = &runs[0]
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return report.Page(rows, lastRun, h.now()).Render(ctx, c.Response())
}
