package export

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventexport/internal/analytics"
	"eventexport/internal/history"
	"eventexport/internal/logger"

	pkgerrors "eventexport/pkg/errors"
)

const csvContentType = "application/csv"

type Handler struct {
	service *Service
	history history.Repository
	logger  logger.Logger
}

// NewHandler serves exports. historyRepo may be nil, in which case the history
// route is not registered.
func NewHandler(service *Service, historyRepo history.Repository, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		history: historyRepo,
		logger:  log,
	}
}

// RegisterRoutes mounts the export API behind auth. Extra middleware runs
// after auth, so it can read the principal.
func (h *Handler) RegisterRoutes(router gin.IRouter, auth gin.HandlerFunc, extra ...gin.HandlerFunc) {
	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events/export", append([]gin.HandlerFunc{auth}, extra...)...)
		{
			events.GET("", h.Export)
			events.GET("/columns", h.ListColumns)
			if h.history != nil {
				events.GET("/history", h.ListHistory)
			}
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := pkgerrors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	}
	c.JSON(status, pkgerrors.ToErrorResponse(err))
}

// Export godoc
// @Summary      Export events as CSV
// @Description  Export a workspace's click, lead or sale events as a CSV file with the requested columns
// @Tags         events
// @Produce      text/csv
// @Param        event     query     string  true   "Event type (click, lead, sale)"
// @Param        columns   query     string  true   "Comma-separated column keys"
// @Param        domain    query     string  false  "Link domain"
// @Param        key       query     string  false  "Link key, requires domain"
// @Param        interval  query     string  false  "24h, 7d, 30d, 90d, 1y, mtd, qtd, ytd or all"
// @Param        start     query     string  false  "Window start (ISO 8601)"
// @Param        end       query     string  false  "Window end (ISO 8601)"
// @Param        timezone  query     string  false  "IANA timezone for calendar intervals"
// @Param        folderId  query     string  false  "Folder ID"
// @Success      200  {string}  string  "CSV document"
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      403  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /events/export [get]
func (h *Handler) Export(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		h.handleError(c, pkgerrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Export(c.Request.Context(), p, c.Request.URL.Query())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Header("X-Export-Id", result.ID)
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	if result.LimitReached {
		c.Header("X-Export-Limit-Reached", "true")
	}
	c.Data(http.StatusOK, csvContentType, result.Body)
}

// ListColumns godoc
// @Summary      List export columns
// @Description  List the column keys and labels that carry data for an event type
// @Tags         events
// @Produce      json
// @Param        event  query     string  true  "Event type (click, lead, sale)"
// @Success      200  {array}   Column
// @Failure      400  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /events/export/columns [get]
func (h *Handler) ListColumns(c *gin.Context) {
	eventType, ok := analytics.ParseEventType(c.Query("event"))
	if !ok {
		h.handleError(c, pkgerrors.Validation("event", "event must be one of click, lead, sale"))
		return
	}
	c.JSON(http.StatusOK, Columns(eventType))
}

// ListHistory godoc
// @Summary      List recent exports
// @Description  List the workspace's most recent exports, newest first
// @Tags         events
// @Produce      json
// @Param        limit  query     int  false  "Maximum records (1-100)"
// @Success      200  {array}   history.Record
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /events/export/history [get]
func (h *Handler) ListHistory(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		h.handleError(c, pkgerrors.ErrUnauthorized)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.handleError(c, pkgerrors.Validation("limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.history.ListRecent(c.Request.Context(), p.Workspace.ID, limit)
	if err != nil {
		h.handleError(c, pkgerrors.ErrInternal.WithCause(err))
		return
	}
	c.JSON(http.StatusOK, records)
}
