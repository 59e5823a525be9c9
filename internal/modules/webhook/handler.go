package webhook

import (
	"io"
	"net/http"
	"strings"

	"cleansched/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/checkout", h.Receive)
}

// Receive accepts one verified gateway event. Everything short of a
// storage failure answers 200 so the sender does not retry forever.
func (h *Handler) Receive(c *gin.Context) {
	raw, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(strings.NewReader(string(raw)))

	var ev Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.loggerf("level=error msg=invalid webhook payload err=%v", err)
		response.Error(c, http.StatusBadRequest, "INVALID_EVENT", err.Error())
		return
	}
	ev.Raw = string(raw)

	outcome, err := h.service.Apply(c.Request.Context(), ev)
	if err != nil {
		h.loggerf("level=error msg=webhook apply failed event_id=%s err=%v", ev.ID, err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "event processing failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"outcome": string(outcome)})
}
