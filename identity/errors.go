package identity

import "errors"

var (
	// ErrInvalidAddress indicates the input is not a hex Hash160, a compressed
	// public key, or a base58 P2PKH address.
	ErrInvalidAddress = errors.New("identity: invalid participant address")

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("identity: invalid network name")

	// ErrNilPublicKey indicates a nil public key was supplied.
	ErrNilPublicKey = errors.New("identity: public key is nil")
)
