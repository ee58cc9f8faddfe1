package httpinterface

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
)

type collectionHandler struct {
	operatorSvc application.OperatorService
	exchangeSvc application.ExchangeService
}

func newCollectionHandler(
	operatorSvc application.OperatorService,
	exchangeSvc application.ExchangeService,
) *collectionHandler {
	return &collectionHandler{operatorSvc, exchangeSvc}
}

func (h *collectionHandler) deploy(c *gin.Context) {
	req := DeployCollectionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	deploy := h.operatorSvc.DeployCollectionAndMintBatch
	if req.ToTokenID != nil {
		deploy = h.operatorSvc.DeployCollectionAndPark
	}
	collection, err := deploy(
		c.Request.Context(), callerFromContext(c), req.toApplication(),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CollectionResponse{
		Collection:      *collection,
		DomainSeparator: collection.DomainSeparator(),
	})
}

func (h *collectionHandler) list(c *gin.Context) {
	var owner common.Address
	if s := c.Query("owner"); s != "" {
		var err error
		if owner, err = parseAddress("owner", s); err != nil {
			badRequest(c, err)
			return
		}
	}

	collections, err := h.operatorSvc.ListCollections(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	res := make([]CollectionResponse, 0, len(collections))
	for _, collection := range collections {
		res = append(res, CollectionResponse{
			Collection:      collection,
			DomainSeparator: collection.DomainSeparator(),
		})
	}
	c.JSON(http.StatusOK, res)
}

func (h *collectionHandler) get(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	collection, err := h.operatorSvc.GetCollection(ctx, addr)
	if err != nil {
		writeError(c, err)
		return
	}
	separator, err := h.exchangeSvc.DomainSeparator(ctx, addr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CollectionResponse{*collection, separator})
}

func (h *collectionHandler) royaltyInfo(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	price := big.NewInt(0)
	if s := c.Query("price"); s != "" {
		if _, ok := price.SetString(s, 10); !ok {
			badRequest(c, fmt.Errorf("price must be an integer"))
			return
		}
	}

	ctx := c.Request.Context()
	recipient, amount, err := h.operatorSvc.RoyaltyInfo(ctx, addr, price)
	if err != nil {
		writeError(c, err)
		return
	}
	collection, err := h.operatorSvc.GetCollection(ctx, addr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, RoyaltyResponse{
		Recipient:  recipient,
		Amount:     amount,
		RoyaltyFee: collection.RoyaltyFee,
	})
}

func (h *collectionHandler) setRoyaltyFee(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := RoyaltyRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.SetRoyaltyFee(
		c.Request.Context(), addr, callerFromContext(c), req.Fee,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) park(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := ParkRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.ParkTokenIds(
		c.Request.Context(), addr, callerFromContext(c), req.ToTokenID,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) mint(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := MintRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.Mint(
		c.Request.Context(), addr, callerFromContext(c), req.To, req.TokenIDs...,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) burn(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := BurnRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.Burn(
		c.Request.Context(), addr, callerFromContext(c), req.TokenIDs...,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) transfer(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := TransferRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.TransferToken(
		c.Request.Context(), addr, callerFromContext(c),
		req.From, req.To, req.TokenID,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) setBaseURI(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := BaseURIRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.SetBaseURI(
		c.Request.Context(), addr, callerFromContext(c), req.URI,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) setTokenURI(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	req := TokenURIRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.operatorSvc.SetTokenURI(
		c.Request.Context(), addr, callerFromContext(c), req.TokenID, req.URI,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *collectionHandler) getToken(c *gin.Context) {
	addr, ok := collectionParam(c)
	if !ok {
		return
	}
	tokenID, err := parseTokenID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.operatorSvc.GetToken(c.Request.Context(), addr, tokenID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func collectionParam(c *gin.Context) (common.Address, bool) {
	addr, err := parseAddress("collection", c.Param("addr"))
	if err != nil {
		badRequest(c, err)
		return common.Address{}, false
	}
	return addr, true
}
