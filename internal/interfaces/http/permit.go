package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
)

type permitHandler struct {
	permitSvc application.PermitService
}

func newPermitHandler(permitSvc application.PermitService) *permitHandler {
	return &permitHandler{permitSvc}
}

func (h *permitHandler) permit(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := PermitRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.permitSvc.Permit(
		c.Request.Context(), addr, req.Spender, req.TokenID, req.Deadline,
		req.Signature,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *permitHandler) permitAll(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := PermitAllRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.permitSvc.PermitAll(
		c.Request.Context(), addr, req.Owner, req.Spender, req.Deadline,
		req.Signature,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *permitHandler) nonces(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	owner, err := parseAddress("owner", c.Param("owner"))
	if err != nil {
		badRequest(c, err)
		return
	}

	nonces, err := h.permitSvc.Nonces(c.Request.Context(), addr, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonces)
}
