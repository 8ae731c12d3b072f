package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jhcsc/attend-api/internal/handler"
	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/service/attendance"
	"github.com/jhcsc/attend-api/internal/service/session"
)

type Handler struct {
	svc     *attendance.Service
	session *session.Service
}

func NewHandler(svc *attendance.Service, session *session.Service) *Handler {
	return &Handler{svc: svc, session: session}
}

// RegisterRoutes wires the public submission endpoint; submissions come from
// students, not operators.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/attendance", h.Submit)
}

// RegisterProtectedRoutes wires the operator-facing read side.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/events/:id/attendance", h.EventSheet)
	r.GET("/stats", h.Stats)
}

// Submit records one student's attendance through the active session. The
// window is re-checked on every submission; a closed window is rejected
// before anything is written.
func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.session.Submit(c.Request.Context(), req.EventID, req.Email, model.AttendanceAction(req.Action))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

// EventSheet returns the per-student IN/OUT pivot for an event.
func (h *Handler) EventSheet(c *gin.Context) {
	rows, err := h.svc.EventSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rows))
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
