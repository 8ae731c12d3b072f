package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jhcsc/attend-api/internal/handler"
	"github.com/jhcsc/attend-api/internal/service/credential"
	"github.com/jhcsc/attend-api/internal/service/dispatch"
)

type Handler struct {
	svc    *dispatch.Service
	broker *credential.Broker
}

func NewHandler(svc *dispatch.Service, broker *credential.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/dispatch")
	{
		group.POST("/test", h.SendTest)
		group.GET("/credential", h.CredentialStatus)
	}
}

type testRequest struct {
	To string `json:"to" binding:"required,email"`
}

// SendTest delivers one message to the given address so operators can verify
// mailer connectivity and credentials before opening a window.
func (h *Handler) SendTest(c *gin.Context) {
	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.SendTest(c.Request.Context(), req.To); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"delivered": true, "to": req.To}))
}

func (h *Handler) CredentialStatus(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"status": h.broker.Status(),
		"ready":  h.broker.IsReady(),
	}))
}
