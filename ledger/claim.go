package ledger

import (
	"fmt"

	"github.com/bitfsorg/stakepool-go/identity"
)

// Claim pays owner's pro-rata share of the fees collected since the
// position's checkpoint and advances the checkpoint, so an immediate second
// claim pays nothing:
//
//	reward = floor((TotalFeesCollected - FeeCheckpoint) * StakedAmount / TotalStaked)
//
// Claim is a no-op, not an error, when owner has no position or a zero stake.
func (l *Ledger) Claim(owner identity.Address) (*Receipt, error) {
	return l.mutate(opClaim, owner, func(tx Tx, ev *Event) error {
		pos, found, err := tx.Position(owner)
		if err != nil {
			return err
		}
		if !found || pos.StakedAmount == 0 {
			return errNoOp
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		acct, err := tx.Account(owner)
		if err != nil {
			return err
		}

		if ev.Reward, err = settle(pool, pos, acct); err != nil {
			return err
		}
		pos.CheckpointMark = ev.Mark
		return putAll(tx, pool, pos, acct)
	})
}

// PendingReward returns what Claim would pay owner now, without mutating.
func (l *Ledger) PendingReward(owner identity.Address) (uint64, error) {
	var reward uint64
	err := l.store.View(func(tx Tx) error {
		pos, found, err := tx.Position(owner)
		if err != nil || !found {
			return err
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		reward, err = pendingReward(pool, pos)
		return err
	})
	return reward, err
}

// pendingReward computes the position's unpaid accrual. A zero TotalStaked
// yields zero. The result is clamped to the pool's undistributed fees.
func pendingReward(pool *Pool, pos *StakePosition) (uint64, error) {
	if pos.StakedAmount == 0 || pool.TotalStaked == 0 {
		return 0, nil
	}
	if pos.StakedAmount > pool.TotalStaked {
		return 0, fmt.Errorf("%w: position %d exceeds pool total %d", ErrConservationViolated, pos.StakedAmount, pool.TotalStaked)
	}
	delta, err := subU64(pool.TotalFeesCollected, pos.FeeCheckpoint)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCheckpointAhead, err)
	}
	reward, err := mulDiv(delta, pos.StakedAmount, pool.TotalStaked)
	if err != nil {
		return 0, err
	}
	if u := pool.Undistributed(); reward > u {
		reward = u
	}
	return reward, nil
}

// settle pays the position's pending reward out of custody into acct and
// moves the checkpoint to TotalFeesCollected. The caller sets the mark.
func settle(pool *Pool, pos *StakePosition, acct *Account) (uint64, error) {
	reward, err := pendingReward(pool, pos)
	if err != nil {
		return 0, err
	}
	if reward > 0 {
		if pool.TotalRewardsPaid, err = addU64(pool.TotalRewardsPaid, reward); err != nil {
			return 0, err
		}
		if acct.RewardsReceived, err = addU64(acct.RewardsReceived, reward); err != nil {
			return 0, err
		}
	}
	pos.FeeCheckpoint = pool.TotalFeesCollected
	return reward, nil
}
