package ledger

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/stakepool-go/fingerprint"
	"github.com/bitfsorg/stakepool-go/identity"
)

var genesisTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

const testWindow = 7 * 24 * time.Hour

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(genesisTime)
	opts = append([]Option{WithClock(clock), WithInvariantChecks()}, opts...)
	l := New(NewMemStore(), opts...)
	_, err := l.Genesis(GenesisParams{FundingWindow: testWindow, ShareAsset: "SHR", BatchFee: 10})
	require.NoError(t, err)
	return l, clock
}

// fund contributes and stakes amount for owner.
func fund(t *testing.T, l *Ledger, owner identity.Address, amount uint64) {
	t.Helper()
	_, err := l.Contribute(owner, amount)
	require.NoError(t, err)
	_, err = l.Stake(owner, amount)
	require.NoError(t, err)
}

func mustPool(t *testing.T, l *Ledger) *Pool {
	t.Helper()
	pool, err := l.Pool()
	require.NoError(t, err)
	return pool
}

func mustPosition(t *testing.T, l *Ledger, owner identity.Address) *StakePosition {
	t.Helper()
	pos, found, err := l.Position(owner)
	require.NoError(t, err)
	require.True(t, found)
	return pos
}

// --- Genesis ---

func TestGenesis(t *testing.T) {
	l, _ := newTestLedger(t)
	pool := mustPool(t, l)
	assert.Equal(t, genesisTime, pool.WindowStart)
	assert.Equal(t, genesisTime.Add(testWindow), pool.WindowEnd)
	assert.Equal(t, "SHR", pool.ShareAsset)
	assert.Equal(t, uint64(10), pool.BatchFee)
	assert.Zero(t, pool.TotalContributed)
	assert.Zero(t, pool.TotalStaked)

	_, err := l.Genesis(GenesisParams{FundingWindow: time.Hour})
	assert.ErrorIs(t, err, ErrPoolExists)

	events, err := l.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventGenesis, events[0].Kind)
}

func TestGenesis_InvalidParams(t *testing.T) {
	l := New(NewMemStore())
	_, err := l.Genesis(GenesisParams{})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = l.Genesis(GenesisParams{FundingWindow: time.Hour, ShareAsset: string(make([]byte, MaxShareAssetLen+1))})
	assert.ErrorIs(t, err, ErrInvalidPoolData)

	_, err = l.Pool()
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestOperationsRequirePool(t *testing.T) {
	l := New(NewMemStore())
	_, err := l.Contribute(makeAddr(0x01), 1)
	assert.ErrorIs(t, err, ErrPoolNotFound)
	_, err = l.DepositFee(1)
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

// --- Contribute ---

func TestContribute(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)

	receipt, err := l.Contribute(a, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), receipt.Amount)
	assert.False(t, receipt.NoOp())

	_, err = l.Contribute(a, 50)
	require.NoError(t, err)

	acct, err := l.Account(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), acct.FreeShares)
	assert.Equal(t, uint64(150), acct.Contributed)

	pool := mustPool(t, l)
	assert.Equal(t, uint64(150), pool.TotalContributed)
	assert.Zero(t, pool.TotalStaked)

	_, found, err := l.Position(a)
	require.NoError(t, err)
	assert.False(t, found, "contribute must not open a position")
}

func TestContribute_ZeroAmount(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.Contribute(makeAddr(0x01), 0)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestContribute_FundingWindow(t *testing.T) {
	l, clock := newTestLedger(t)
	a := makeAddr(0x01)

	clock.Advance(testWindow)
	_, err := l.Contribute(a, 10)
	require.NoError(t, err, "window end is inclusive")

	clock.Advance(time.Second)
	_, err = l.Contribute(a, 10)
	assert.ErrorIs(t, err, ErrFundingClosed)

	pool := mustPool(t, l)
	assert.Equal(t, uint64(10), pool.TotalContributed)

	// Staking and fees keep working after the window.
	_, err = l.Stake(a, 10)
	require.NoError(t, err)
	_, err = l.DepositFee(5)
	require.NoError(t, err)
}

func TestContribute_Overflow(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.Contribute(makeAddr(0x01), math.MaxUint64)
	require.NoError(t, err)

	_, err = l.Contribute(makeAddr(0x02), 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	acct, err := l.Account(makeAddr(0x02))
	require.NoError(t, err)
	assert.Zero(t, acct.FreeShares)

	// Custody would exceed the representable range.
	_, err = l.DepositFee(1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Zero(t, mustPool(t, l).TotalFeesCollected)
}

// --- Stake / Unstake ---

func TestStake(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	_, err := l.Contribute(a, 100)
	require.NoError(t, err)

	receipt, err := l.Stake(a, 60)
	require.NoError(t, err)

	pos := mustPosition(t, l, a)
	assert.Equal(t, uint64(60), pos.StakedAmount)
	assert.Zero(t, pos.FeeCheckpoint)
	assert.Equal(t, receipt.Mark, pos.CheckpointMark)

	acct, err := l.Account(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), acct.FreeShares)
	assert.Equal(t, uint64(60), mustPool(t, l).TotalStaked)
}

func TestStake_InsufficientFreeBalance(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	_, err := l.Contribute(a, 10)
	require.NoError(t, err)

	_, err = l.Stake(a, 11)
	assert.ErrorIs(t, err, ErrInsufficientFreeBalance)

	_, found, err := l.Position(a)
	require.NoError(t, err)
	assert.False(t, found, "failed stake must not create a position")
	assert.Zero(t, mustPool(t, l).TotalStaked)

	_, err = l.Stake(a, 0)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestStake_CheckpointSnapshot(t *testing.T) {
	l, _ := newTestLedger(t)
	a, b := makeAddr(0x01), makeAddr(0x02)
	fund(t, l, a, 100)
	_, err := l.DepositFee(25)
	require.NoError(t, err)

	fund(t, l, b, 100)
	pos := mustPosition(t, l, b)
	assert.Equal(t, uint64(25), pos.FeeCheckpoint, "late staker starts at current fees")

	receipt, err := l.Claim(b)
	require.NoError(t, err)
	assert.Zero(t, receipt.Reward)
}

func TestUnstake(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	fund(t, l, a, 100)

	_, err := l.Unstake(a, 30)
	require.NoError(t, err)

	pos := mustPosition(t, l, a)
	assert.Equal(t, uint64(70), pos.StakedAmount)
	acct, err := l.Account(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), acct.FreeShares)
	assert.Equal(t, uint64(70), mustPool(t, l).TotalStaked)

	// A position drained to zero is kept.
	_, err = l.Unstake(a, 70)
	require.NoError(t, err)
	pos = mustPosition(t, l, a)
	assert.Zero(t, pos.StakedAmount)
}

func TestUnstake_ExceedsStake(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	fund(t, l, a, 100)

	_, err := l.Unstake(a, 101)
	assert.ErrorIs(t, err, ErrInsufficientStake)
	assert.Equal(t, uint64(100), mustPool(t, l).TotalStaked)
	assert.Equal(t, uint64(100), mustPosition(t, l, a).StakedAmount)

	_, err = l.Unstake(makeAddr(0x09), 1)
	assert.ErrorIs(t, err, ErrInsufficientStake)

	_, err = l.Unstake(a, 0)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

// --- Claim ---

func TestClaim_SingleStaker(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	fund(t, l, a, 100)

	_, err := l.DepositFee(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), mustPool(t, l).TotalFeesCollected)

	pending, err := l.PendingReward(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), pending)

	receipt, err := l.Claim(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), receipt.Reward)

	pos := mustPosition(t, l, a)
	assert.Equal(t, uint64(10), pos.FeeCheckpoint)
	assert.Equal(t, receipt.Mark, pos.CheckpointMark)
	assert.Equal(t, uint64(100), pos.StakedAmount)

	pool := mustPool(t, l)
	assert.Equal(t, uint64(10), pool.TotalRewardsPaid)
	assert.Zero(t, pool.Undistributed())

	// Second immediate claim pays nothing.
	receipt, err = l.Claim(a)
	require.NoError(t, err)
	assert.Zero(t, receipt.Reward)
	assert.False(t, receipt.NoOp())

	acct, err := l.Account(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), acct.RewardsReceived)
}

func TestClaim_ProRata(t *testing.T) {
	tests := []struct {
		name      string
		fee       uint64
		rewardA   uint64
		rewardB   uint64
		remaining uint64
	}{
		{"divisible", 40, 10, 30, 0},
		{"truncated", 41, 10, 30, 1},
		{"dust only", 3, 0, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t)
			a, b := makeAddr(0x01), makeAddr(0x02)
			fund(t, l, a, 100)
			fund(t, l, b, 300)
			assert.Equal(t, uint64(400), mustPool(t, l).TotalStaked)

			_, err := l.DepositFee(tt.fee)
			require.NoError(t, err)

			ra, err := l.Claim(a)
			require.NoError(t, err)
			rb, err := l.Claim(b)
			require.NoError(t, err)

			assert.Equal(t, tt.rewardA, ra.Reward)
			assert.Equal(t, tt.rewardB, rb.Reward)
			assert.Equal(t, tt.remaining, mustPool(t, l).Undistributed())
		})
	}
}

func TestClaim_NoPositionIsNoOp(t *testing.T) {
	l, _ := newTestLedger(t)
	before, err := l.Events()
	require.NoError(t, err)
	noops := testutil.ToFloat64(OperationsTotal.WithLabelValues(opClaim, statusNoOp))

	receipt, err := l.Claim(makeAddr(0x07))
	require.NoError(t, err)
	assert.True(t, receipt.NoOp())
	assert.Zero(t, receipt.Reward)

	after, err := l.Events()
	require.NoError(t, err)
	assert.Len(t, after, len(before))
	assert.Equal(t, noops+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(opClaim, statusNoOp)))
}

func TestClaim_ZeroStakeIsNoOp(t *testing.T) {
	l, _ := newTestLedger(t)
	a, b := makeAddr(0x01), makeAddr(0x02)
	fund(t, l, a, 50)
	fund(t, l, b, 50)
	_, err := l.Unstake(a, 50)
	require.NoError(t, err)
	_, err = l.DepositFee(100)
	require.NoError(t, err)

	posBefore := mustPosition(t, l, a)
	poolBefore := mustPool(t, l)

	receipt, err := l.Claim(a)
	require.NoError(t, err)
	assert.True(t, receipt.NoOp())

	assert.Equal(t, posBefore, mustPosition(t, l, a))
	assert.Equal(t, poolBefore, mustPool(t, l))
}

func TestClaim_NoFeesPaysZero(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	fund(t, l, a, 100)

	receipt, err := l.Claim(a)
	require.NoError(t, err)
	assert.Zero(t, receipt.Reward)
	assert.Zero(t, mustPosition(t, l, a).FeeCheckpoint)
}

// Two stakers share a fee; one claims and leaves. The remaining staker's
// formula reward exceeds what is left in custody and is clamped.
func TestClaim_PayoutCappedByUndistributed(t *testing.T) {
	for _, policy := range []SettlementPolicy{PolicySettle, PolicyForfeit} {
		t.Run(policy.String(), func(t *testing.T) {
			l, _ := newTestLedger(t, WithPolicy(policy))
			a, b := makeAddr(0x01), makeAddr(0x02)
			fund(t, l, a, 100)
			fund(t, l, b, 100)
			_, err := l.DepositFee(100)
			require.NoError(t, err)

			rb, err := l.Claim(b)
			require.NoError(t, err)
			assert.Equal(t, uint64(50), rb.Reward)
			_, err = l.Unstake(b, 100)
			require.NoError(t, err)

			ra, err := l.Claim(a)
			require.NoError(t, err)
			assert.Equal(t, uint64(50), ra.Reward)

			pool := mustPool(t, l)
			assert.Equal(t, pool.TotalFeesCollected, pool.TotalRewardsPaid)
		})
	}
}

// --- Settlement policies ---

func TestSettlementPolicy_Stake(t *testing.T) {
	tests := []struct {
		policy      SettlementPolicy
		stakeReward uint64
		laterClaim  uint64
	}{
		{PolicySettle, 10, 0},
		{PolicyForfeit, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			l, _ := newTestLedger(t, WithPolicy(tt.policy))
			a := makeAddr(0x01)
			_, err := l.Contribute(a, 150)
			require.NoError(t, err)
			_, err = l.Stake(a, 100)
			require.NoError(t, err)
			_, err = l.DepositFee(10)
			require.NoError(t, err)

			receipt, err := l.Stake(a, 50)
			require.NoError(t, err)
			assert.Equal(t, tt.stakeReward, receipt.Reward)
			assert.Equal(t, uint64(10), mustPosition(t, l, a).FeeCheckpoint)

			claim, err := l.Claim(a)
			require.NoError(t, err)
			assert.Equal(t, tt.laterClaim, claim.Reward)
		})
	}
}

func TestSettlementPolicy_Unstake(t *testing.T) {
	tests := []struct {
		policy        SettlementPolicy
		unstakeReward uint64
		checkpoint    uint64
		laterClaim    uint64
	}{
		// 20 * 100/200 paid on unstake.
		{PolicySettle, 10, 20, 0},
		// Checkpoint stays at 0; claim sees 20 * 50/150.
		{PolicyForfeit, 0, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			l, _ := newTestLedger(t, WithPolicy(tt.policy))
			a, b := makeAddr(0x01), makeAddr(0x02)
			fund(t, l, a, 100)
			fund(t, l, b, 100)
			_, err := l.DepositFee(20)
			require.NoError(t, err)

			receipt, err := l.Unstake(a, 50)
			require.NoError(t, err)
			assert.Equal(t, tt.unstakeReward, receipt.Reward)
			assert.Equal(t, tt.checkpoint, mustPosition(t, l, a).FeeCheckpoint)

			claim, err := l.Claim(a)
			require.NoError(t, err)
			assert.Equal(t, tt.laterClaim, claim.Reward)
			assert.Equal(t, uint64(20), mustPosition(t, l, a).FeeCheckpoint)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("settle")
	require.NoError(t, err)
	assert.Equal(t, PolicySettle, p)

	p, err = ParsePolicy(" Forfeit ")
	require.NoError(t, err)
	assert.Equal(t, PolicyForfeit, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicySettle, p)

	_, err = ParsePolicy("lazy")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

// --- Fees and record batches ---

func TestDepositFee(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.DepositFee(7)
	require.NoError(t, err)
	_, err = l.DepositFee(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), mustPool(t, l).TotalFeesCollected)

	_, err = l.DepositFee(0)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestAcceptBatch(t *testing.T) {
	l, _ := newTestLedger(t)
	submitter := makeAddr(0x05)
	batch := [][]byte{[]byte("first"), []byte("second")}

	receipt, err := l.AcceptBatch(submitter, batch)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), receipt.Amount)
	assert.Equal(t, uint64(10), mustPool(t, l).TotalFeesCollected)

	records, err := l.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	for i, rec := range records {
		assert.Equal(t, receipt.Mark, rec.Mark)
		assert.Equal(t, uint32(i), rec.Index)
		assert.Equal(t, submitter, rec.Submitter)
		assert.Equal(t, fingerprint.Of(batch[i]), rec.Fingerprint)
	}

	_, err = l.AcceptBatch(submitter, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Equal(t, uint64(10), mustPool(t, l).TotalFeesCollected)
}

func TestAcceptBatch_TooLarge(t *testing.T) {
	l, _ := newTestLedger(t)
	batch := make([][]byte, MaxBatchRecords+1)
	for i := range batch {
		batch[i] = []byte{byte(i)}
	}
	_, err := l.AcceptBatch(makeAddr(0x05), batch)
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	records, err := l.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAcceptBatch_FeeFundsRewards(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	fund(t, l, a, 100)

	for i := 0; i < 3; i++ {
		_, err := l.AcceptBatch(makeAddr(0x05), [][]byte{{byte(i)}})
		require.NoError(t, err)
	}
	receipt, err := l.Claim(a)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), receipt.Reward)
}

// --- Invariants ---

func TestVerify_DetectsCorruption(t *testing.T) {
	store := NewMemStore()
	l := New(store, WithClock(clockwork.NewFakeClockAt(genesisTime)))
	_, err := l.Genesis(GenesisParams{FundingWindow: time.Hour})
	require.NoError(t, err)
	fund(t, l, makeAddr(0x01), 100)
	require.NoError(t, l.Verify())

	require.NoError(t, store.Update(func(tx Tx) error {
		pool, err := tx.Pool()
		require.NoError(t, err)
		pool.TotalStaked = 99
		return tx.PutPool(pool)
	}))
	assert.ErrorIs(t, l.Verify(), ErrConservationViolated)

	// With invariant checks on, mutations over corrupt state roll back.
	checked := New(store, WithClock(clockwork.NewFakeClockAt(genesisTime)), WithInvariantChecks())
	_, err = checked.DepositFee(1)
	assert.ErrorIs(t, err, ErrConservationViolated)
	assert.Zero(t, mustPool(t, l).TotalFeesCollected)
}

func TestValidators(t *testing.T) {
	pool := &Pool{TotalContributed: 100, TotalStaked: 60, TotalFeesCollected: 10, TotalRewardsPaid: 4}
	positions := []*StakePosition{
		{Owner: makeAddr(0x01), StakedAmount: 40, FeeCheckpoint: 10},
		{Owner: makeAddr(0x02), StakedAmount: 20, FeeCheckpoint: 0},
	}
	accounts := []*Account{
		{Owner: makeAddr(0x01), FreeShares: 10, Contributed: 50, RewardsReceived: 4},
		{Owner: makeAddr(0x02), FreeShares: 30, Contributed: 50},
	}
	require.NoError(t, ValidateConservation(pool, positions))
	require.NoError(t, ValidateCheckpoints(pool, positions))
	require.NoError(t, ValidateShareSupply(pool, accounts))
	require.NoError(t, ValidatePayouts(pool, accounts))

	positions[1].FeeCheckpoint = 11
	assert.ErrorIs(t, ValidateCheckpoints(pool, positions), ErrCheckpointAhead)

	accounts[1].FreeShares = 31
	assert.ErrorIs(t, ValidateShareSupply(pool, accounts), ErrShareSupplyMismatch)

	accounts[0].RewardsReceived = 5
	assert.ErrorIs(t, ValidatePayouts(pool, accounts), ErrPayoutMismatch)

	positions[0].StakedAmount = math.MaxUint64
	assert.ErrorIs(t, ValidateConservation(pool, positions), ErrConservationViolated)
}

// Random operation sequences keep every invariant, never decrease the
// monotone counters, and never pay out more than was collected.
func TestLedger_RandomSequence(t *testing.T) {
	for _, policy := range []SettlementPolicy{PolicySettle, PolicyForfeit} {
		t.Run(policy.String(), func(t *testing.T) {
			l, clock := newTestLedger(t, WithPolicy(policy))
			rng := rand.New(rand.NewPCG(42, uint64(policy)))
			owners := []identity.Address{makeAddr(0x01), makeAddr(0x02), makeAddr(0x03), makeAddr(0x04)}
			allowed := []error{ErrInsufficientFreeBalance, ErrInsufficientStake, ErrFundingClosed}

			prev := mustPool(t, l)
			var paid uint64
			for i := 0; i < 2000; i++ {
				owner := owners[rng.IntN(len(owners))]
				amount := rng.Uint64N(200) + 1

				var (
					receipt *Receipt
					err     error
				)
				switch rng.IntN(6) {
				case 0:
					receipt, err = l.Contribute(owner, amount)
				case 1:
					receipt, err = l.Stake(owner, amount)
				case 2:
					receipt, err = l.Unstake(owner, amount)
				case 3:
					receipt, err = l.Claim(owner)
				case 4:
					receipt, err = l.DepositFee(amount)
				case 5:
					clock.Advance(time.Hour)
					continue
				}
				if err != nil {
					matched := false
					for _, want := range allowed {
						matched = matched || errors.Is(err, want)
					}
					require.True(t, matched, "unexpected error: %v", err)
				} else {
					paid += receipt.Reward
				}

				require.NoError(t, l.Verify())
				pool := mustPool(t, l)
				require.GreaterOrEqual(t, pool.TotalFeesCollected, prev.TotalFeesCollected)
				require.GreaterOrEqual(t, pool.TotalContributed, prev.TotalContributed)
				require.LessOrEqual(t, paid, pool.TotalFeesCollected)
				require.Equal(t, paid, pool.TotalRewardsPaid)

				positions, err := l.Positions()
				require.NoError(t, err)
				for _, pos := range positions {
					require.LessOrEqual(t, pos.FeeCheckpoint, pool.TotalFeesCollected)
				}
				prev = pool
			}
		})
	}
}

// --- Journal, logging and metrics ---

func TestEvents_OnePerMutation(t *testing.T) {
	l, clock := newTestLedger(t)
	a := makeAddr(0x01)
	fund(t, l, a, 100)
	clock.Advance(time.Minute)
	_, err := l.DepositFee(10)
	require.NoError(t, err)
	_, err = l.Claim(a)
	require.NoError(t, err)
	_, err = l.Unstake(a, 500)
	require.Error(t, err)

	events, err := l.Events()
	require.NoError(t, err)
	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
		assert.Equal(t, uint64(i+1), ev.Mark)
	}
	assert.Equal(t, []EventKind{EventGenesis, EventContribute, EventStake, EventFeeDeposit, EventClaim}, kinds)
	assert.Equal(t, uint64(10), events[4].Reward)
	assert.True(t, genesisTime.Add(time.Minute).Equal(events[3].Time))
	assert.NotEqual(t, events[3].ID, events[4].ID)
	assert.Equal(t, "fee_deposit", events[3].Kind.String())
}

func TestLedger_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l, _ := newTestLedger(t, WithLogger(log))

	_, err := l.Contribute(makeAddr(0x01), 5)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "op=contribute")
	assert.Contains(t, buf.String(), "amount=5")

	_, err = l.Stake(makeAddr(0x01), 6)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "ledger: rejected")
}

func TestLedger_Metrics(t *testing.T) {
	l, _ := newTestLedger(t)
	a := makeAddr(0x01)
	ok := testutil.ToFloat64(OperationsTotal.WithLabelValues(opStake, statusOK))
	failed := testutil.ToFloat64(OperationsTotal.WithLabelValues(opStake, statusError))
	rewards := testutil.ToFloat64(RewardsPaidTotal)

	fund(t, l, a, 100)
	_, err := l.Stake(a, 1)
	require.Error(t, err)
	_, err = l.DepositFee(8)
	require.NoError(t, err)
	_, err = l.Claim(a)
	require.NoError(t, err)

	assert.Equal(t, ok+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(opStake, statusOK)))
	assert.Equal(t, failed+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(opStake, statusError)))
	assert.Equal(t, rewards+8, testutil.ToFloat64(RewardsPaidTotal))
	assert.Equal(t, float64(100), testutil.ToFloat64(PoolTotalStaked))
	assert.Zero(t, testutil.ToFloat64(PoolUndistributed))
}
