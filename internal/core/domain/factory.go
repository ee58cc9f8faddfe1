package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Factory instantiates collections and holds the exchange-wide
// configuration: protocol and operational fees, the strategy whitelist and
// the deployer whitelist.
type Factory struct {
	Address                 common.Address          `json:"address"`
	Owner                   common.Address          `json:"owner"`
	ChainID                 *big.Int                `json:"chainId"`
	BaseURI                 string                  `json:"baseUri"`
	ProtocolFeeRecipient    common.Address          `json:"protocolFeeRecipient"`
	ProtocolFee             uint8                   `json:"protocolFee"`
	OperationalFeeRecipient common.Address          `json:"operationalFeeRecipient"`
	OperationalFee          uint8                   `json:"operationalFee"`
	Strategies              map[common.Address]bool `json:"strategies,omitempty"`
	Deployers               map[common.Address]bool `json:"deployers,omitempty"`
	Nonce                   uint64                  `json:"nonce"`
}

// NewFactory returns a factory owned by owner. The factory address is
// derived from the owner one.
func NewFactory(
	owner common.Address, chainID *big.Int, baseURI string,
	protocolFeeRecipient common.Address, protocolFee uint8,
	operationalFeeRecipient common.Address, operationalFee uint8,
) (*Factory, error) {
	if owner == ZeroAddress {
		return nil, ErrInvalidTo
	}
	if protocolFeeRecipient == ZeroAddress || operationalFeeRecipient == ZeroAddress {
		return nil, ErrInvalidTo
	}
	if protocolFee > MaxProtocolFee || operationalFee > MaxOperationalFee {
		return nil, ErrInvalidFee
	}
	if chainID == nil {
		chainID = big.NewInt(0)
	}

	return &Factory{
		Address:                 crypto.CreateAddress(owner, 0),
		Owner:                   owner,
		ChainID:                 new(big.Int).Set(chainID),
		BaseURI:                 baseURI,
		ProtocolFeeRecipient:    protocolFeeRecipient,
		ProtocolFee:             protocolFee,
		OperationalFeeRecipient: operationalFeeRecipient,
		OperationalFee:          operationalFee,
		Strategies:              make(map[common.Address]bool),
		Deployers:               make(map[common.Address]bool),
	}, nil
}

// IsOwner ...
func (f *Factory) IsOwner(addr common.Address) bool {
	return addr == f.Owner
}

// SetStrategyWhitelisted adds or removes a strategy from the whitelist. Only
// identifiers of known strategies can be whitelisted.
func (f *Factory) SetStrategyWhitelisted(caller, strategy common.Address, whitelisted bool) error {
	if !f.IsOwner(caller) {
		return ErrForbidden
	}
	if _, ok := StrategyTypeFromAddress(strategy); !ok {
		return ErrInvalidStrategy
	}
	f.initMaps()
	if whitelisted {
		f.Strategies[strategy] = true
	} else {
		delete(f.Strategies, strategy)
	}
	return nil
}

// IsStrategyWhitelisted ...
func (f *Factory) IsStrategyWhitelisted(strategy common.Address) bool {
	return f.Strategies[strategy]
}

// GetStrategy returns the whitelisted strategy identified by addr.
func (f *Factory) GetStrategy(addr common.Address) (Strategy, error) {
	if !f.IsStrategyWhitelisted(addr) {
		return nil, ErrStrategyNotWhitelisted
	}
	return NewStrategyFromAddress(addr)
}

// SetDeployerWhitelisted adds or removes a deployer from the whitelist.
// Whitelisting the zero address lets anyone deploy.
func (f *Factory) SetDeployerWhitelisted(caller, deployer common.Address, whitelisted bool) error {
	if !f.IsOwner(caller) {
		return ErrForbidden
	}
	f.initMaps()
	if whitelisted {
		f.Deployers[deployer] = true
	} else {
		delete(f.Deployers, deployer)
	}
	return nil
}

// CanDeploy returns whether the address is allowed to deploy collections.
func (f *Factory) CanDeploy(deployer common.Address) bool {
	return f.IsOwner(deployer) || f.Deployers[ZeroAddress] || f.Deployers[deployer]
}

// NextCollectionAddress returns the address of the next collection and
// increments the deployment counter.
func (f *Factory) NextCollectionAddress() common.Address {
	addr := crypto.CreateAddress(f.Address, f.Nonce)
	f.Nonce++
	return addr
}

// SetProtocolFee ...
func (f *Factory) SetProtocolFee(caller, recipient common.Address, fee uint8) error {
	if !f.IsOwner(caller) {
		return ErrForbidden
	}
	if recipient == ZeroAddress {
		return ErrInvalidTo
	}
	if fee > MaxProtocolFee {
		return ErrInvalidFee
	}
	f.ProtocolFeeRecipient = recipient
	f.ProtocolFee = fee
	return nil
}

// SetOperationalFee ...
func (f *Factory) SetOperationalFee(caller, recipient common.Address, fee uint8) error {
	if !f.IsOwner(caller) {
		return ErrForbidden
	}
	if recipient == ZeroAddress {
		return ErrInvalidTo
	}
	if fee > MaxOperationalFee {
		return ErrInvalidFee
	}
	f.OperationalFeeRecipient = recipient
	f.OperationalFee = fee
	return nil
}

// SetBaseURI ...
func (f *Factory) SetBaseURI(caller common.Address, uri string) error {
	if !f.IsOwner(caller) {
		return ErrForbidden
	}
	f.BaseURI = uri
	return nil
}

// WhitelistedStrategies returns the whitelisted strategy types.
func (f *Factory) WhitelistedStrategies() []StrategyType {
	types := make([]StrategyType, 0, len(f.Strategies))
	for _, t := range StrategyTypes() {
		if f.Strategies[t.Address()] {
			types = append(types, t)
		}
	}
	return types
}

// Copy returns a deep copy of the factory.
func (f *Factory) Copy() *Factory {
	cf := *f
	cf.ChainID = copyInt(f.ChainID)
	cf.Strategies = make(map[common.Address]bool, len(f.Strategies))
	for k, v := range f.Strategies {
		cf.Strategies[k] = v
	}
	cf.Deployers = make(map[common.Address]bool, len(f.Deployers))
	for k, v := range f.Deployers {
		cf.Deployers[k] = v
	}
	return &cf
}

func (f *Factory) initMaps() {
	if f.Strategies == nil {
		f.Strategies = make(map[common.Address]bool)
	}
	if f.Deployers == nil {
		f.Deployers = make(map[common.Address]bool)
	}
}
