package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
)

// AddressSize is the length of a participant address (HASH160 of a compressed pubkey).
const AddressSize = 20

// Address identifies a participant: RIPEMD160(SHA256(compressed pubkey)).
type Address [AddressSize]byte

// FromPublicKey derives the participant address for pub.
func FromPublicKey(pub *ec.PublicKey) (Address, error) {
	var a Address
	if pub == nil {
		return a, ErrNilPublicKey
	}
	copy(a[:], pub.Hash())
	return a, nil
}

// FromBytes copies a 20-byte hash into an Address.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Parse accepts a 40-char hex Hash160, a 66-char hex compressed public key,
// or a base58 P2PKH address string.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 2 * AddressSize:
		b, err := hex.DecodeString(s)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		return FromBytes(b)
	case 66:
		b, err := hex.DecodeString(s)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		pub, err := ec.PublicKeyFromBytes(b)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		return FromPublicKey(pub)
	}

	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return FromBytes([]byte(addr.PublicKeyHash))
}

// String returns the hex encoding of the address hash.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// P2PKH renders the address as a base58check P2PKH string for net.
func (a Address) P2PKH(net *Network) (string, error) {
	if net == nil {
		net = &MainNet
	}
	addr, err := script.NewAddressFromPublicKeyHash(a[:], net.Mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}
