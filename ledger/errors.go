package ledger

import "errors"

var (
	// ErrFundingClosed indicates a contribution arrived after the funding window ended.
	ErrFundingClosed = errors.New("ledger: funding window closed")

	// ErrInsufficientStake indicates an unstake exceeds the position's staked amount.
	ErrInsufficientStake = errors.New("ledger: insufficient stake")

	// ErrInsufficientFreeBalance indicates a stake exceeds the participant's free shares.
	ErrInsufficientFreeBalance = errors.New("ledger: insufficient free share balance")

	// ErrArithmeticOverflow indicates an addition or product would wrap.
	ErrArithmeticOverflow = errors.New("ledger: arithmetic overflow")

	// ErrArithmeticUnderflow indicates a subtraction would go below zero.
	ErrArithmeticUnderflow = errors.New("ledger: arithmetic underflow")

	// ErrDivisionByZero indicates a division with a zero divisor.
	ErrDivisionByZero = errors.New("ledger: division by zero")

	// ErrZeroAmount indicates an operation amount of zero.
	ErrZeroAmount = errors.New("ledger: amount must be positive")

	// ErrPoolNotFound indicates the pool has not been created.
	ErrPoolNotFound = errors.New("ledger: pool not found")

	// ErrPoolExists indicates genesis already ran.
	ErrPoolExists = errors.New("ledger: pool already exists")

	// ErrInvalidWindow indicates a non-positive funding window.
	ErrInvalidWindow = errors.New("ledger: funding window must be positive")

	// ErrEmptyBatch indicates a record batch with no entries.
	ErrEmptyBatch = errors.New("ledger: record batch is empty")

	// ErrConservationViolated indicates position stakes do not sum to the pool total.
	ErrConservationViolated = errors.New("ledger: stake conservation violated")

	// ErrCheckpointAhead indicates a position checkpoint exceeds total fees collected.
	ErrCheckpointAhead = errors.New("ledger: fee checkpoint ahead of fees collected")

	// ErrShareSupplyMismatch indicates free plus staked shares differ from shares minted.
	ErrShareSupplyMismatch = errors.New("ledger: share supply mismatch")

	// ErrPayoutMismatch indicates rewards paid exceed fees collected or disagree with account totals.
	ErrPayoutMismatch = errors.New("ledger: payout totals inconsistent")

	// ErrBatchTooLarge indicates a record batch above MaxBatchRecords.
	ErrBatchTooLarge = errors.New("ledger: record batch too large")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrInvalidPoolData indicates a stored pool record is malformed.
	ErrInvalidPoolData = errors.New("ledger: invalid pool data")

	// ErrInvalidPositionData indicates a stored position record is malformed.
	ErrInvalidPositionData = errors.New("ledger: invalid position data")

	// ErrInvalidAccountData indicates a stored account record is malformed.
	ErrInvalidAccountData = errors.New("ledger: invalid account data")

	// ErrReadOnlyTx indicates a write attempted inside a View transaction.
	ErrReadOnlyTx = errors.New("ledger: write in read-only transaction")

	// ErrInvalidPolicy indicates an unknown settlement policy name.
	ErrInvalidPolicy = errors.New("ledger: invalid settlement policy")
)
