package ledger

import (
	"fmt"

	"github.com/bitfsorg/stakepool-go/identity"
)

// Stake moves amount free shares from owner's account into pool custody,
// opening the owner's position on first use. The position's fee checkpoint
// is reset to the current TotalFeesCollected. Under PolicySettle the reward
// accrued on the previous balance is paid first; under PolicyForfeit it is
// discarded.
func (l *Ledger) Stake(owner identity.Address, amount uint64) (*Receipt, error) {
	return l.mutate(opStake, owner, func(tx Tx, ev *Event) error {
		if amount == 0 {
			return ErrZeroAmount
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		acct, err := tx.Account(owner)
		if err != nil {
			return err
		}
		if acct.FreeShares < amount {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFreeBalance, acct.FreeShares, amount)
		}
		pos, found, err := tx.Position(owner)
		if err != nil {
			return err
		}
		if !found {
			pos = &StakePosition{Owner: owner}
		}

		if found && l.policy == PolicySettle {
			if ev.Reward, err = settle(pool, pos, acct); err != nil {
				return err
			}
		}

		if acct.FreeShares, err = subU64(acct.FreeShares, amount); err != nil {
			return err
		}
		if pos.StakedAmount, err = addU64(pos.StakedAmount, amount); err != nil {
			return err
		}
		if pool.TotalStaked, err = addU64(pool.TotalStaked, amount); err != nil {
			return err
		}
		pos.FeeCheckpoint = pool.TotalFeesCollected
		pos.CheckpointMark = ev.Mark

		ev.Amount = amount
		return putAll(tx, pool, pos, acct)
	})
}

// Unstake moves amount shares from pool custody back to owner's free balance.
// It fails with ErrInsufficientStake when owner has no position or the
// position holds less than amount. Under PolicySettle pending rewards are paid
// and the checkpoint advanced before the balance shrinks; under PolicyForfeit
// the checkpoint is left unchanged.
func (l *Ledger) Unstake(owner identity.Address, amount uint64) (*Receipt, error) {
	return l.mutate(opUnstake, owner, func(tx Tx, ev *Event) error {
		if amount == 0 {
			return ErrZeroAmount
		}
		pos, found, err := tx.Position(owner)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: no position", ErrInsufficientStake)
		}
		if pos.StakedAmount < amount {
			return fmt.Errorf("%w: staked %d, requested %d", ErrInsufficientStake, pos.StakedAmount, amount)
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		acct, err := tx.Account(owner)
		if err != nil {
			return err
		}

		if l.policy == PolicySettle {
			if ev.Reward, err = settle(pool, pos, acct); err != nil {
				return err
			}
			pos.CheckpointMark = ev.Mark
		}

		if pos.StakedAmount, err = subU64(pos.StakedAmount, amount); err != nil {
			return err
		}
		if pool.TotalStaked, err = subU64(pool.TotalStaked, amount); err != nil {
			return err
		}
		if acct.FreeShares, err = addU64(acct.FreeShares, amount); err != nil {
			return err
		}

		ev.Amount = amount
		return putAll(tx, pool, pos, acct)
	})
}

func putAll(tx Tx, pool *Pool, pos *StakePosition, acct *Account) error {
	if err := tx.PutPool(pool); err != nil {
		return err
	}
	if err := tx.PutPosition(pos); err != nil {
		return err
	}
	return tx.PutAccount(acct)
}
