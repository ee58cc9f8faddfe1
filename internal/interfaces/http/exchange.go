package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
)

type exchangeHandler struct {
	exchangeSvc application.ExchangeService
}

func newExchangeHandler(exchangeSvc application.ExchangeService) *exchangeHandler {
	return &exchangeHandler{exchangeSvc}
}

func (h *exchangeHandler) bid(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := BidRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.exchangeSvc.Bid(
		c.Request.Context(), addr, callerFromContext(c), req.toApplication(),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *exchangeHandler) bidWithOrder(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := BidOrderRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.exchangeSvc.BidWithOrder(
		c.Request.Context(), addr, callerFromContext(c), req.Ask, req.Bid,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *exchangeHandler) claim(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := AskRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.exchangeSvc.Claim(
		c.Request.Context(), addr, callerFromContext(c), req.Ask,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *exchangeHandler) cancel(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := AskRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.exchangeSvc.Cancel(
		c.Request.Context(), addr, callerFromContext(c), req.Ask,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{*order, true})
}

func (h *exchangeHandler) updateApprovedBidHash(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := ApprovedBidHashRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.exchangeSvc.UpdateApprovedBidHash(
		c.Request.Context(), addr, callerFromContext(c),
		req.AskHash, req.Bidder, req.BidHash,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *exchangeHandler) approvedBidHash(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	proxy, err := parseAddress("proxy", c.Query("proxy"))
	if err != nil {
		badRequest(c, err)
		return
	}
	askHash, err := parseHash("askHash", c.Query("askHash"))
	if err != nil {
		badRequest(c, err)
		return
	}
	bidder, err := parseAddress("bidder", c.Query("bidder"))
	if err != nil {
		badRequest(c, err)
		return
	}

	bidHash, err := h.exchangeSvc.ApprovedBidHash(
		c.Request.Context(), addr, proxy, askHash, bidder,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ApprovedBidHashResponse{bidHash})
}

func (h *exchangeHandler) listOrders(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	filter, err := parseOrderFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	orders, err := h.exchangeSvc.ListOrders(c.Request.Context(), addr, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, OrderResponse{o, o.IsCancelledOrClaimed()})
	}
	c.JSON(http.StatusOK, res)
}

func (h *exchangeHandler) getOrder(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	hash, err := parseHash("hash", c.Param("hash"))
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := h.exchangeSvc.GetOrder(ctx, addr, hash)
	if err != nil {
		writeError(c, err)
		return
	}
	done, err := h.exchangeSvc.IsCancelledOrClaimed(ctx, addr, hash)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OrderResponse{*order, done})
}
