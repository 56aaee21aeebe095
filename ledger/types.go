package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/bitfsorg/stakepool-go/fingerprint"
	"github.com/bitfsorg/stakepool-go/identity"
)

// Pool is the singleton fee-distribution record created at genesis.
type Pool struct {
	WindowStart        time.Time // contributions accepted from here
	WindowEnd          time.Time // ... through here, inclusive
	TotalContributed   uint64    // value raised; never decreases
	TotalFeesCollected uint64    // fees ever deposited; never decreases
	TotalStaked        uint64    // sum of all positions' StakedAmount
	TotalRewardsPaid   uint64    // fee value disbursed to stakers
	BatchFee           uint64    // fixed fee charged per accepted record batch
	ShareAsset         string    // share unit identifier, minted 1:1 with contributions
}

// Undistributed returns the fee value held in custody that has not been paid out.
func (p *Pool) Undistributed() uint64 {
	if p.TotalRewardsPaid > p.TotalFeesCollected {
		return 0
	}
	return p.TotalFeesCollected - p.TotalRewardsPaid
}

// CustodyValue returns contributed value plus undistributed fees.
func (p *Pool) CustodyValue() (uint64, error) {
	return addU64(p.TotalContributed, p.Undistributed())
}

// FundingOpen reports whether contributions are accepted at now.
func (p *Pool) FundingOpen(now time.Time) bool {
	return !now.After(p.WindowEnd)
}

func (p *Pool) clone() *Pool {
	c := *p
	return &c
}

// StakePosition is a participant's locked shares and fee checkpoint.
// Positions are created on first stake and never removed.
type StakePosition struct {
	Owner          identity.Address
	StakedAmount   uint64
	FeeCheckpoint  uint64 // TotalFeesCollected at last settlement
	CheckpointMark uint64 // store mark of last settlement; audit only
}

func (p *StakePosition) clone() *StakePosition {
	c := *p
	return &c
}

// Account holds a participant's free (unstaked) shares and value totals.
type Account struct {
	Owner           identity.Address
	FreeShares      uint64
	Contributed     uint64
	RewardsReceived uint64
}

func (a *Account) clone() *Account {
	c := *a
	return &c
}

// EventKind names a committed ledger mutation.
type EventKind uint8

const (
	EventGenesis EventKind = iota + 1
	EventContribute
	EventStake
	EventUnstake
	EventClaim
	EventFeeDeposit
	EventBatchAccepted
)

var eventKindNames = map[EventKind]string{
	EventGenesis:       "genesis",
	EventContribute:    "contribute",
	EventStake:         "stake",
	EventUnstake:       "unstake",
	EventClaim:         "claim",
	EventFeeDeposit:    "fee_deposit",
	EventBatchAccepted: "batch_accepted",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is one journal entry. Exactly one is written per committed mutation.
type Event struct {
	ID     uuid.UUID
	Mark   uint64
	Kind   EventKind
	Owner  identity.Address // zero for genesis and raw fee deposits
	Amount uint64           // shares or value moved
	Reward uint64           // fee value paid to Owner
	Time   time.Time
}

// Record is one accepted ciphertext fingerprint.
type Record struct {
	Mark        uint64
	Index       uint32
	Submitter   identity.Address
	Fingerprint fingerprint.Fingerprint
	Time        time.Time
}

// Receipt summarises a mutating operation for the caller.
// A zero Receipt is returned for a no-op claim.
type Receipt struct {
	EventID uuid.UUID
	Mark    uint64
	Amount  uint64
	Reward  uint64
}

// NoOp reports whether the operation committed nothing.
func (r *Receipt) NoOp() bool {
	return r.Mark == 0
}

// GenesisParams configures the pool created by Genesis.
type GenesisParams struct {
	FundingWindow time.Duration
	ShareAsset    string
	BatchFee      uint64
}
