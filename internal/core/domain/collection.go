package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shoyu-network/shoyu-daemon/pkg/eip712"
	"github.com/shoyu-network/shoyu-daemon/pkg/mathutil"
)

// Collection is a non-fungible token collection with its own signing domain.
// It keeps every piece of per-collection exchange state other than orders:
// royalty configuration, permit nonces, proxy approved bids and the parked
// and minted token ids.
type Collection struct {
	Address             common.Address    `json:"address"`
	Name                string            `json:"name"`
	Symbol              string            `json:"symbol"`
	Owner               common.Address    `json:"owner"`
	ChainID             *big.Int          `json:"chainId"`
	BaseURI             string            `json:"baseUri"`
	TokenURIs           map[string]string `json:"tokenUris,omitempty"`
	RoyaltyFeeRecipient common.Address    `json:"royaltyFeeRecipient"`
	RoyaltyFee          uint8             `json:"royaltyFee"`
	// ParkedUntil is the exclusive upper bound of the parked token ids range.
	// Parked ids can be listed and minted later on without being owned yet.
	ParkedUntil *big.Int `json:"parkedUntil"`
	// Minted is the sparse set of ever minted token ids.
	Minted            map[string]bool           `json:"minted,omitempty"`
	Nonces            map[common.Address]uint64 `json:"nonces,omitempty"`
	NoncesForAll      map[common.Address]uint64 `json:"noncesForAll,omitempty"`
	ApprovedBidHashes map[string]common.Hash    `json:"approvedBidHashes,omitempty"`
	CreatedAt         int64                     `json:"createdAt"`
}

// NewCollection validates the arguments and returns a new collection with
// no parked and no minted token.
func NewCollection(
	address common.Address, name, symbol string, owner common.Address,
	chainID *big.Int, royaltyFeeRecipient common.Address, royaltyFee uint8,
) (*Collection, error) {
	if len(strings.TrimSpace(name)) <= 0 {
		return nil, ErrInvalidName
	}
	if owner == ZeroAddress || royaltyFeeRecipient == ZeroAddress {
		return nil, ErrInvalidTo
	}
	if royaltyFee > MaxRoyaltyFee {
		return nil, ErrInvalidFee
	}
	if royaltyFee == 0 {
		royaltyFee = RoyaltyFeeUnset
	}
	if chainID == nil {
		chainID = big.NewInt(0)
	}

	return &Collection{
		Address:             address,
		Name:                name,
		Symbol:              symbol,
		Owner:               owner,
		ChainID:             new(big.Int).Set(chainID),
		TokenURIs:           make(map[string]string),
		RoyaltyFeeRecipient: royaltyFeeRecipient,
		RoyaltyFee:          royaltyFee,
		ParkedUntil:         big.NewInt(0),
		Minted:              make(map[string]bool),
		Nonces:              make(map[common.Address]uint64),
		NoncesForAll:        make(map[common.Address]uint64),
		ApprovedBidHashes:   make(map[string]common.Hash),
	}, nil
}

// DomainSeparator returns the separator of the collection signing domain.
func (c *Collection) DomainSeparator() common.Hash {
	return eip712.DomainSeparator(c.Name, c.ChainID, c.Address)
}

// CanTrade returns whether the collection exchange can trade the token.
func (c *Collection) CanTrade(token common.Address) bool {
	return token == c.Address
}

// IsOwner ...
func (c *Collection) IsOwner(addr common.Address) bool {
	return addr == c.Owner
}

// RoyaltyFeeInfo returns the royalty recipient and the raw royalty rate,
// RoyaltyFeeUnset included.
func (c *Collection) RoyaltyFeeInfo() (common.Address, uint8) {
	return c.RoyaltyFeeRecipient, c.RoyaltyFee
}

// EffectiveRoyaltyFee returns the rate charged at settlement.
func (c *Collection) EffectiveRoyaltyFee() uint8 {
	if c.RoyaltyFee == RoyaltyFeeUnset {
		return 0
	}
	return c.RoyaltyFee
}

// RoyaltyInfo returns the royalty recipient and amount for a sale price.
func (c *Collection) RoyaltyInfo(salePrice *big.Int) (common.Address, *big.Int) {
	return c.RoyaltyFeeRecipient, mathutil.FeeAmount(salePrice, uint64(c.EffectiveRoyaltyFee()))
}

// SetRoyaltyFee updates the royalty rate. Only the owner can do it and the
// rate can only decrease. A collection deployed without royalties can set
// any rate up to MaxRoyaltyFee.
func (c *Collection) SetRoyaltyFee(caller common.Address, fee uint8) error {
	if !c.IsOwner(caller) {
		return ErrForbidden
	}
	if c.RoyaltyFee == RoyaltyFeeUnset {
		if fee > MaxRoyaltyFee {
			return ErrInvalidFee
		}
	} else if fee > c.RoyaltyFee {
		return ErrInvalidFee
	}
	c.RoyaltyFee = fee
	return nil
}

// SetBaseURI ...
func (c *Collection) SetBaseURI(caller common.Address, uri string) error {
	if !c.IsOwner(caller) {
		return ErrForbidden
	}
	c.BaseURI = uri
	return nil
}

// SetTokenURI overrides the URI of a single token.
func (c *Collection) SetTokenURI(caller common.Address, tokenID *big.Int, uri string) error {
	if !c.IsOwner(caller) {
		return ErrForbidden
	}
	if !mathutil.IsNonNegative(tokenID) {
		return ErrInvalidTokenID
	}
	c.initMaps()
	c.TokenURIs[tokenID.String()] = uri
	return nil
}

// TokenURI returns the URI of a minted or parked token. Unless overridden,
// it is the collection base URI followed by the token id, or the factory
// base URI followed by the collection address and the token id when the
// collection has no base URI of its own.
func (c *Collection) TokenURI(factoryBaseURI string, tokenID *big.Int, exists bool) (string, error) {
	if !mathutil.IsNonNegative(tokenID) || (!exists && !c.IsParked(tokenID)) {
		return "", ErrInvalidTokenID
	}
	if uri, ok := c.TokenURIs[tokenID.String()]; ok {
		return uri, nil
	}
	if len(c.BaseURI) > 0 {
		return fmt.Sprintf("%s%s.json", c.BaseURI, tokenID), nil
	}
	return fmt.Sprintf(
		"%s%s/%s.json", factoryBaseURI, strings.ToLower(c.Address.Hex()), tokenID,
	), nil
}

// ParkTokenIds extends the parked range up to toTokenID, exclusive.
func (c *Collection) ParkTokenIds(caller common.Address, toTokenID *big.Int) error {
	if !c.IsOwner(caller) {
		return ErrForbidden
	}
	if toTokenID == nil || toTokenID.Cmp(c.parkedUntil()) <= 0 {
		return ErrInvalidToTokenID
	}
	c.ParkedUntil = new(big.Int).Set(toTokenID)
	return nil
}

// IsParked returns whether the token id is in the parked range and has not
// been minted yet.
func (c *Collection) IsParked(tokenID *big.Int) bool {
	if !mathutil.IsNonNegative(tokenID) {
		return false
	}
	return tokenID.Cmp(c.parkedUntil()) < 0 && !c.IsMinted(tokenID)
}

// IsMinted returns whether the token id was ever minted.
func (c *Collection) IsMinted(tokenID *big.Int) bool {
	return c.Minted[tokenID.String()]
}

// Mint marks the given token ids as minted to the given address. Only the
// owner can mint and every id can be minted once.
func (c *Collection) Mint(caller, to common.Address, tokenIDs ...*big.Int) error {
	if !c.IsOwner(caller) {
		return ErrForbidden
	}
	if to == ZeroAddress {
		return ErrInvalidTo
	}
	if len(tokenIDs) <= 0 {
		return ErrInvalidTokenID
	}
	seen := make(map[string]bool, len(tokenIDs))
	for _, id := range tokenIDs {
		if !mathutil.IsNonNegative(id) {
			return ErrInvalidTokenID
		}
		if c.IsMinted(id) || seen[id.String()] {
			return ErrAlreadyMinted
		}
		seen[id.String()] = true
	}
	c.initMaps()
	for id := range seen {
		c.Minted[id] = true
	}
	return nil
}

// Nonce returns the current permit nonce of owner.
func (c *Collection) Nonce(owner common.Address) uint64 {
	return c.Nonces[owner]
}

// NonceForAll returns the current permit-all nonce of owner.
func (c *Collection) NonceForAll(owner common.Address) uint64 {
	return c.NoncesForAll[owner]
}

// UseNonce returns the current permit nonce of owner and increments it.
func (c *Collection) UseNonce(owner common.Address) uint64 {
	c.initMaps()
	nonce := c.Nonces[owner]
	c.Nonces[owner] = nonce + 1
	return nonce
}

// UseNonceForAll returns the current permit-all nonce of owner and
// increments it.
func (c *Collection) UseNonceForAll(owner common.Address) uint64 {
	c.initMaps()
	nonce := c.NoncesForAll[owner]
	c.NoncesForAll[owner] = nonce + 1
	return nonce
}

// PermitDigest returns the digest an owner signs to approve spender for a
// single token.
func (c *Collection) PermitDigest(
	spender common.Address, tokenID *big.Int, nonce uint64, deadline *big.Int,
) common.Hash {
	return eip712.Digest(c.DomainSeparator(), eip712.HashStruct(
		eip712.PermitTypeHash,
		eip712.Address(spender),
		eip712.Uint256(tokenID),
		eip712.Uint256(new(big.Int).SetUint64(nonce)),
		eip712.Uint256(deadline),
	))
}

// PermitAllDigest returns the digest an owner signs to approve spender as
// operator of all their tokens.
func (c *Collection) PermitAllDigest(
	owner, spender common.Address, nonce uint64, deadline *big.Int,
) common.Hash {
	return eip712.Digest(c.DomainSeparator(), eip712.HashStruct(
		eip712.PermitAllTypeHash,
		eip712.Address(owner),
		eip712.Address(spender),
		eip712.Uint256(new(big.Int).SetUint64(nonce)),
		eip712.Uint256(deadline),
	))
}

// SetApprovedBidHash records the bid a proxy pre-approved for bidder on an
// ask. A zero bid hash removes the approval.
func (c *Collection) SetApprovedBidHash(proxy common.Address, askHash common.Hash, bidder common.Address, bidHash common.Hash) {
	c.initMaps()
	key := approvedBidHashKey(proxy, askHash, bidder)
	if bidHash == (common.Hash{}) {
		delete(c.ApprovedBidHashes, key)
		return
	}
	c.ApprovedBidHashes[key] = bidHash
}

// ApprovedBidHash ...
func (c *Collection) ApprovedBidHash(proxy common.Address, askHash common.Hash, bidder common.Address) common.Hash {
	return c.ApprovedBidHashes[approvedBidHashKey(proxy, askHash, bidder)]
}

// Copy returns a deep copy of the collection.
func (c *Collection) Copy() *Collection {
	cc := *c
	cc.ChainID = copyInt(c.ChainID)
	cc.ParkedUntil = copyInt(c.ParkedUntil)
	cc.TokenURIs = make(map[string]string, len(c.TokenURIs))
	for k, v := range c.TokenURIs {
		cc.TokenURIs[k] = v
	}
	cc.Minted = make(map[string]bool, len(c.Minted))
	for k, v := range c.Minted {
		cc.Minted[k] = v
	}
	cc.Nonces = make(map[common.Address]uint64, len(c.Nonces))
	for k, v := range c.Nonces {
		cc.Nonces[k] = v
	}
	cc.NoncesForAll = make(map[common.Address]uint64, len(c.NoncesForAll))
	for k, v := range c.NoncesForAll {
		cc.NoncesForAll[k] = v
	}
	cc.ApprovedBidHashes = make(map[string]common.Hash, len(c.ApprovedBidHashes))
	for k, v := range c.ApprovedBidHashes {
		cc.ApprovedBidHashes[k] = v
	}
	return &cc
}

// initMaps restores the maps a decoder may leave nil when empty.
func (c *Collection) initMaps() {
	if c.TokenURIs == nil {
		c.TokenURIs = make(map[string]string)
	}
	if c.Minted == nil {
		c.Minted = make(map[string]bool)
	}
	if c.Nonces == nil {
		c.Nonces = make(map[common.Address]uint64)
	}
	if c.NoncesForAll == nil {
		c.NoncesForAll = make(map[common.Address]uint64)
	}
	if c.ApprovedBidHashes == nil {
		c.ApprovedBidHashes = make(map[string]common.Hash)
	}
}

func (c *Collection) parkedUntil() *big.Int {
	if c.ParkedUntil == nil {
		return big.NewInt(0)
	}
	return c.ParkedUntil
}

func approvedBidHashKey(proxy common.Address, askHash common.Hash, bidder common.Address) string {
	return fmt.Sprintf("%s:%s:%s", proxy.Hex(), askHash.Hex(), bidder.Hex())
}
