// Package ledger implements the stake-weighted fee-distribution ledger:
// a funding pool that mints shares against contributions, stake positions
// with fee checkpoints, and pro-rata payout of fees collected since each
// position's last settlement.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/bitfsorg/stakepool-go/identity"
)

const (
	opGenesis     = "genesis"
	opContribute  = "contribute"
	opStake       = "stake"
	opUnstake     = "unstake"
	opClaim       = "claim"
	opDepositFee  = "deposit_fee"
	opAcceptBatch = "accept_batch"
)

var opKinds = map[string]EventKind{
	opGenesis:     EventGenesis,
	opContribute:  EventContribute,
	opStake:       EventStake,
	opUnstake:     EventUnstake,
	opClaim:       EventClaim,
	opDepositFee:  EventFeeDeposit,
	opAcceptBatch: EventBatchAccepted,
}

// errNoOp aborts a transaction that has nothing to commit.
var errNoOp = errors.New("ledger: no-op")

// SettlementPolicy decides what happens to a position's unclaimed accrual
// when its staked amount changes.
type SettlementPolicy int

const (
	// PolicySettle pays the pending reward before stake or unstake changes the
	// balance, then advances the checkpoint. No accrual is lost or double counted.
	PolicySettle SettlementPolicy = iota

	// PolicyForfeit keeps the legacy behavior: stake overwrites the checkpoint
	// without paying, and unstake leaves the checkpoint where it is.
	PolicyForfeit
)

// ParsePolicy maps "settle" or "forfeit" to a SettlementPolicy.
func ParsePolicy(s string) (SettlementPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "settle", "":
		return PolicySettle, nil
	case "forfeit":
		return PolicyForfeit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

func (p SettlementPolicy) String() string {
	switch p {
	case PolicySettle:
		return "settle"
	case PolicyForfeit:
		return "forfeit"
	}
	return "unknown"
}

// Ledger applies pool operations against a Store. Each mutating method is one
// store transaction: it either commits every change or none.
type Ledger struct {
	store      Store
	clock      clockwork.Clock
	policy     SettlementPolicy
	log        *slog.Logger
	checkInvar bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for the funding window and journal times.
func WithClock(c clockwork.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithPolicy sets the settlement policy. The default is PolicySettle.
func WithPolicy(p SettlementPolicy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithLogger sets the logger. The default discards.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithInvariantChecks runs Verify inside every mutating transaction, so a
// mutation that would break an invariant is rolled back.
func WithInvariantChecks() Option {
	return func(l *Ledger) { l.checkInvar = true }
}

// New creates a Ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		clock:  clockwork.NewRealClock(),
		policy: PolicySettle,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the configured settlement policy.
func (l *Ledger) Policy() SettlementPolicy { return l.policy }

// Genesis creates the pool. It runs once; later calls return ErrPoolExists.
func (l *Ledger) Genesis(params GenesisParams) (*Pool, error) {
	if params.FundingWindow <= 0 {
		return nil, ErrInvalidWindow
	}
	if len(params.ShareAsset) > MaxShareAssetLen {
		return nil, fmt.Errorf("%w: share asset longer than %d bytes", ErrInvalidPoolData, MaxShareAssetLen)
	}

	var pool *Pool
	_, err := l.mutate(opGenesis, identity.Address{}, func(tx Tx, ev *Event) error {
		if _, err := tx.Pool(); err == nil {
			return ErrPoolExists
		} else if !errors.Is(err, ErrPoolNotFound) {
			return err
		}
		start := time.Unix(ev.Time.Unix(), 0).UTC()
		pool = &Pool{
			WindowStart: start,
			WindowEnd:   start.Add(params.FundingWindow),
			BatchFee:    params.BatchFee,
			ShareAsset:  params.ShareAsset,
		}
		return tx.PutPool(pool)
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// mutate runs fn in an Update transaction with a fresh mark and journal
// event. fn fills in the event's amounts; returning errNoOp commits nothing,
// which also releases the mark.
func (l *Ledger) mutate(op string, owner identity.Address, fn func(tx Tx, ev *Event) error) (*Receipt, error) {
	var ev *Event
	err := l.store.Update(func(tx Tx) error {
		mark, err := tx.NextMark()
		if err != nil {
			return err
		}
		ev = &Event{
			ID:    uuid.New(),
			Mark:  mark,
			Kind:  opKinds[op],
			Owner: owner,
			Time:  l.clock.Now().UTC(),
		}
		if err := fn(tx, ev); err != nil {
			return err
		}
		if err := tx.AppendEvent(ev); err != nil {
			return err
		}
		if l.checkInvar {
			return verifyTx(tx)
		}
		return nil
	})

	switch {
	case errors.Is(err, errNoOp):
		observeOp(op, statusNoOp)
		l.log.Debug("ledger: no-op", "op", op, "owner", owner.String())
		return &Receipt{}, nil
	case err != nil:
		observeOp(op, statusError)
		l.log.Debug("ledger: rejected", "op", op, "owner", owner.String(), "error", err)
		return nil, err
	}

	observeOp(op, statusOK)
	observeEvent(ev)
	l.log.Info("ledger: committed",
		"op", op,
		"owner", ownerAttr(owner),
		"amount", ev.Amount,
		"reward", ev.Reward,
		"mark", ev.Mark)
	l.refreshGauges()
	return &Receipt{EventID: ev.ID, Mark: ev.Mark, Amount: ev.Amount, Reward: ev.Reward}, nil
}

// ownerAttr renders an owner for logs; pool-level operations log an empty owner.
func ownerAttr(a identity.Address) string {
	if a.IsZero() {
		return ""
	}
	return a.String()
}

func (l *Ledger) refreshGauges() {
	pool, err := l.Pool()
	if err != nil {
		return
	}
	setPoolGauges(pool)
}

// Pool returns a snapshot of the pool.
func (l *Ledger) Pool() (*Pool, error) {
	var pool *Pool
	err := l.store.View(func(tx Tx) error {
		var err error
		pool, err = tx.Pool()
		return err
	})
	return pool, err
}

// Position returns the owner's position and whether one exists.
func (l *Ledger) Position(owner identity.Address) (*StakePosition, bool, error) {
	var (
		pos   *StakePosition
		found bool
	)
	err := l.store.View(func(tx Tx) error {
		var err error
		pos, found, err = tx.Position(owner)
		return err
	})
	return pos, found, err
}

// Positions returns every position ever opened, including zero balances.
func (l *Ledger) Positions() ([]*StakePosition, error) {
	var out []*StakePosition
	err := l.store.View(func(tx Tx) error {
		var err error
		out, err = tx.Positions()
		return err
	})
	return out, err
}

// Account returns the owner's free balance and value totals.
func (l *Ledger) Account(owner identity.Address) (*Account, error) {
	var a *Account
	err := l.store.View(func(tx Tx) error {
		var err error
		a, err = tx.Account(owner)
		return err
	})
	return a, err
}

// Accounts returns every account that has been written.
func (l *Ledger) Accounts() ([]*Account, error) {
	var out []*Account
	err := l.store.View(func(tx Tx) error {
		var err error
		out, err = tx.Accounts()
		return err
	})
	return out, err
}

// Events returns the journal in mark order.
func (l *Ledger) Events() ([]*Event, error) {
	var out []*Event
	err := l.store.View(func(tx Tx) error {
		var err error
		out, err = tx.Events()
		return err
	})
	return out, err
}

// Records returns accepted record fingerprints in acceptance order.
func (l *Ledger) Records() ([]*Record, error) {
	var out []*Record
	err := l.store.View(func(tx Tx) error {
		var err error
		out, err = tx.Records()
		return err
	})
	return out, err
}
