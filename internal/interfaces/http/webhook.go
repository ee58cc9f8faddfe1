package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
)

type webhookHandler struct {
	pubsubSvc application.PubSubService
}

func newWebhookHandler(pubsubSvc application.PubSubService) *webhookHandler {
	return &webhookHandler{pubsubSvc}
}

func (h *webhookHandler) addWebhook(c *gin.Context) {
	req := WebhookRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	hookID, err := h.pubsubSvc.AddWebhook(c.Request.Context(), application.Webhook{
		Event:    req.Event,
		Endpoint: req.Endpoint,
		Secret:   req.Secret,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, WebhookResponse{hookID})
}

func (h *webhookHandler) removeWebhook(c *gin.Context) {
	if err := h.pubsubSvc.RemoveWebhook(
		c.Request.Context(), c.Param("id"),
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *webhookHandler) listWebhooks(c *gin.Context) {
	hooks, err := h.pubsubSvc.ListWebhooks(c.Request.Context(), c.Query("event"))
	if err != nil {
		writeError(c, err)
		return
	}
	if hooks == nil {
		hooks = []application.WebhookInfo{}
	}
	c.JSON(http.StatusOK, hooks)
}
