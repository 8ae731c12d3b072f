package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jhcsc/attend-api/internal/handler"
	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/service/session"
)

type Handler struct {
	svc *session.Service
}

func NewHandler(svc *session.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/sessions")
	{
		group.POST("", h.Open)
		group.GET("/:eventId/:action", h.Status)
		group.POST("/:eventId/:action/cancel", h.CancelDispatch)
		group.POST("/:eventId/:action/close", h.Close)
	}
}

type openRequest struct {
	EventID string `json:"eventId" binding:"required"`
	Action  string `json:"action" binding:"required,oneof=IN OUT"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// Open starts an attendance cycle: notifications go out in the background
// and submissions are accepted right away.
func (h *Handler) Open(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	view, err := h.svc.OpenWindow(c.Request.Context(), req.EventID, model.AttendanceAction(req.Action),
		model.MessageTemplate{Subject: req.Subject, Body: req.Body})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(view))
}

// Status reports the session state and, once the batch has finished, the
// dispatch outcome including any failed recipients to retry.
func (h *Handler) Status(c *gin.Context) {
	view, err := h.svc.Status(c.Param("eventId"), model.AttendanceAction(c.Param("action")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) CancelDispatch(c *gin.Context) {
	if err := h.svc.Cancel(c.Param("eventId"), model.AttendanceAction(c.Param("action"))); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"cancelled": true}))
}

func (h *Handler) Close(c *gin.Context) {
	if err := h.svc.Close(c.Param("eventId"), model.AttendanceAction(c.Param("action"))); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"closed": true}))
}
