package httpinterface

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
)

type factoryHandler struct {
	operatorSvc application.OperatorService
	exchangeSvc application.ExchangeService
}

func newFactoryHandler(
	operatorSvc application.OperatorService,
	exchangeSvc application.ExchangeService,
) *factoryHandler {
	return &factoryHandler{operatorSvc, exchangeSvc}
}

func (h *factoryHandler) getFactory(c *gin.Context) {
	factory, err := h.operatorSvc.GetFactory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, factory)
}

func (h *factoryHandler) setBaseURI(c *gin.Context) {
	req := BaseURIRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.SetFactoryBaseURI(
		c.Request.Context(), callerFromContext(c), req.URI,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *factoryHandler) listStrategies(c *gin.Context) {
	strategies, err := h.operatorSvc.ListStrategies(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, strategies)
}

func (h *factoryHandler) setStrategyWhitelisted(c *gin.Context) {
	req := StrategyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	strategy, err := req.address()
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.SetStrategyWhitelisted(
		c.Request.Context(), callerFromContext(c), strategy, req.Whitelisted,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *factoryHandler) setDeployerWhitelisted(c *gin.Context) {
	req := DeployerRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.SetDeployerWhitelisted(
		c.Request.Context(), callerFromContext(c), req.Deployer, req.Whitelisted,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *factoryHandler) getFees(c *gin.Context) {
	fees, err := h.operatorSvc.GetFees(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fees)
}

func (h *factoryHandler) setFee(c *gin.Context) {
	req := FeeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var setFee func(
		ctx context.Context, caller, recipient common.Address, fee uint8,
	) (*application.FeesInfo, error)
	switch req.Kind {
	case FeeKindProtocol:
		setFee = h.operatorSvc.SetProtocolFee
	case FeeKindOperational:
		setFee = h.operatorSvc.SetOperationalFee
	default:
		badRequest(c, fmt.Errorf(
			"fee kind must be either %s or %s", FeeKindProtocol, FeeKindOperational,
		))
		return
	}

	fees, err := setFee(
		c.Request.Context(), callerFromContext(c), req.Recipient, req.Fee,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fees)
}

func (h *factoryHandler) blockNumber(c *gin.Context) {
	block, err := h.exchangeSvc.BlockNumber(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BlockResponse{block})
}

func (h *factoryHandler) mine(c *gin.Context) {
	req := MineRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	block, err := h.operatorSvc.MineBlocks(c.Request.Context(), req.Blocks)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BlockResponse{block})
}
