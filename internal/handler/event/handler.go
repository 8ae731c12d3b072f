package event

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jhcsc/attend-api/internal/handler"
	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/service/event"
	"github.com/jhcsc/attend-api/internal/service/window"
)

type Handler struct {
	svc *event.Service
}

func NewHandler(svc *event.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/events")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/:id/window", h.WindowState)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) List(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(events))
}

func (h *Handler) Get(c *gin.Context) {
	found, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

// WindowState reports the live submission window for an event. Clients poll
// this to drive the countdown display.
func (h *Handler) WindowState(c *gin.Context) {
	found, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	now := time.Now()
	resp := gin.H{
		"eventId": found.ID,
		"state":   window.State(found, now),
	}
	if left, bounded := window.Remaining(found, now); bounded && left > 0 {
		resp["remainingSeconds"] = int(left.Seconds())
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}
