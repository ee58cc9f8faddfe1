// Package eip712 implements the typed structured data hashing and signing
// scheme used by collections to authenticate orders and permits.
package eip712

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// DomainVersion is the version every collection domain is bound to.
const DomainVersion = "1"

var (
	// EIP712DomainTypeHash is the type hash of the domain struct.
	EIP712DomainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))
	// AskTypeHash is the type hash of an ask order.
	AskTypeHash = crypto.Keccak256Hash([]byte(
		"Ask(address signer,address proxy,address token,uint256 tokenId,uint256 amount,address strategy,address currency,address recipient,uint256 deadline,bytes params)",
	))
	// BidTypeHash is the type hash of a counter-signed bid order.
	BidTypeHash = crypto.Keccak256Hash([]byte(
		"Bid(bytes32 askHash,address signer,uint256 amount,uint256 price,address recipient,address referrer)",
	))
	// PermitTypeHash is the type hash of a single token approval grant.
	PermitTypeHash = crypto.Keccak256Hash([]byte(
		"Permit(address spender,uint256 tokenId,uint256 nonce,uint256 deadline)",
	))
	// PermitAllTypeHash is the type hash of a collection-wide operator grant.
	PermitAllTypeHash = crypto.Keccak256Hash([]byte(
		"Permit(address owner,address spender,uint256 nonce,uint256 deadline)",
	))
)

var (
	// ErrInvalidV is returned if the recovery id is not 27 or 28.
	ErrInvalidV = errors.New("signature v must be 27 or 28")
	// ErrInvalidSignature is returned if r or s are out of range.
	ErrInvalidSignature = errors.New("invalid signature values")
	// ErrZeroSigner is returned if recovery yields the zero address.
	ErrZeroSigner = errors.New("recovered signer is the zero address")
	// ErrSignerMismatch is returned if the recovered address differs from
	// the expected signer.
	ErrSignerMismatch = errors.New("recovered signer does not match")
)

var secp256k1halfN = new(big.Int).Rsh(crypto.S256().Params().N, 1)

// Field is a single 32-byte word of an encoded struct.
type Field [32]byte

// Bytes32 encodes a bytes32 member.
func Bytes32(v common.Hash) Field {
	return Field(v)
}

// Uint256 encodes a uint256 member. A nil value encodes as zero.
func Uint256(v *big.Int) Field {
	var f Field
	if v == nil {
		return f
	}
	copy(f[:], math.U256Bytes(new(big.Int).Set(v)))
	return f
}

// Uint8 encodes a uint8 member.
func Uint8(v uint8) Field {
	var f Field
	f[31] = v
	return f
}

// Address encodes an address member.
func Address(v common.Address) Field {
	var f Field
	copy(f[:], common.LeftPadBytes(v.Bytes(), 32))
	return f
}

// DynamicBytes encodes a bytes member as the hash of its content.
func DynamicBytes(v []byte) Field {
	return Field(crypto.Keccak256Hash(v))
}

// String encodes a string member as the hash of its content.
func String(v string) Field {
	return Field(crypto.Keccak256Hash([]byte(v)))
}

// HashStruct returns keccak256(typeHash ‖ enc(field_1) ‖ ... ‖ enc(field_n)).
func HashStruct(typeHash common.Hash, fields ...Field) common.Hash {
	buf := make([]byte, 0, 32*(len(fields)+1))
	buf = append(buf, typeHash.Bytes()...)
	for _, f := range fields {
		buf = append(buf, f[:]...)
	}
	return crypto.Keccak256Hash(buf)
}

// DomainSeparator returns the separator of the signing domain identified by
// the given name, chain and verifying contract.
func DomainSeparator(
	name string, chainID *big.Int, verifyingContract common.Address,
) common.Hash {
	return HashStruct(
		EIP712DomainTypeHash,
		String(name),
		String(DomainVersion),
		Uint256(chainID),
		Address(verifyingContract),
	)
}

// Digest returns keccak256("\x19\x01" ‖ domainSeparator ‖ structHash).
func Digest(domainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes(),
	)
}

// Signature is an ECDSA signature in (v, r, s) form with v in {27, 28}.
type Signature struct {
	V uint8       `json:"v"`
	R common.Hash `json:"r"`
	S common.Hash `json:"s"`
}

// SignatureFromBytes parses a 65 bytes r ‖ s ‖ v signature. A recovery id
// of 0 or 1 is normalized to 27 or 28.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf(
			"signature must be %d bytes long, got %d", crypto.SignatureLength, len(b),
		)
	}
	v := b[64]
	if v < 27 {
		v += 27
	}
	return Signature{
		V: v,
		R: common.BytesToHash(b[:32]),
		S: common.BytesToHash(b[32:64]),
	}, nil
}

// Bytes returns the 65 bytes r ‖ s ‖ v form of the signature.
func (s Signature) Bytes() []byte {
	b := make([]byte, 0, crypto.SignatureLength)
	b = append(b, s.R.Bytes()...)
	b = append(b, s.S.Bytes()...)
	return append(b, s.V)
}

// IsZero returns whether the signature is unset.
func (s Signature) IsZero() bool {
	return s.V == 0 && s.R == (common.Hash{}) && s.S == (common.Hash{})
}

// Recover returns the address that signed the given digest.
func Recover(digest common.Hash, sig Signature) (common.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}, ErrInvalidV
	}
	r := new(big.Int).SetBytes(sig.R.Bytes())
	s := new(big.Int).SetBytes(sig.S.Bytes())
	if s.Cmp(secp256k1halfN) > 0 || !crypto.ValidateSignatureValues(sig.V-27, r, s, true) {
		return common.Address{}, ErrInvalidSignature
	}

	raw := sig.Bytes()
	raw[64] -= 27
	pubkey, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	addr := crypto.PubkeyToAddress(*pubkey)
	if addr == (common.Address{}) {
		return common.Address{}, ErrZeroSigner
	}
	return addr, nil
}

// Verify checks that the digest was signed by the given signer.
func Verify(digest common.Hash, signer common.Address, sig Signature) error {
	if signer == (common.Address{}) {
		return ErrZeroSigner
	}
	addr, err := Recover(digest, sig)
	if err != nil {
		return err
	}
	if addr != signer {
		return ErrSignerMismatch
	}
	return nil
}

// Sign signs the digest with the given key.
func Sign(digest common.Hash, key *ecdsa.PrivateKey) (Signature, error) {
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, err
	}
	raw[64] += 27
	return SignatureFromBytes(raw)
}
