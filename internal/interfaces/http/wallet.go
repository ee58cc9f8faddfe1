package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
)

type walletHandler struct {
	operatorSvc application.OperatorService
}

func newWalletHandler(operatorSvc application.OperatorService) *walletHandler {
	return &walletHandler{operatorSvc}
}

func (h *walletHandler) faucet(c *gin.Context) {
	req := FaucetRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.Faucet(
		c.Request.Context(), req.Currency, req.To, req.Amount,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *walletHandler) balance(c *gin.Context) {
	currency, err := parseAddress("currency", c.Param("currency"))
	if err != nil {
		badRequest(c, err)
		return
	}
	owner, err := parseAddress("owner", c.Param("owner"))
	if err != nil {
		badRequest(c, err)
		return
	}

	balance, err := h.operatorSvc.BalanceOf(c.Request.Context(), currency, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{balance})
}
