package ledger

import "fmt"

// ValidateConservation checks that the sum of all position stakes equals the
// pool's TotalStaked.
func ValidateConservation(pool *Pool, positions []*StakePosition) error {
	var sum uint64
	for _, pos := range positions {
		var err error
		if sum, err = addU64(sum, pos.StakedAmount); err != nil {
			return fmt.Errorf("%w: %w", ErrConservationViolated, err)
		}
	}
	if sum != pool.TotalStaked {
		return fmt.Errorf("%w: positions=%d pool=%d", ErrConservationViolated, sum, pool.TotalStaked)
	}
	return nil
}

// ValidateCheckpoints checks that no position's fee checkpoint is ahead of
// the pool's TotalFeesCollected.
func ValidateCheckpoints(pool *Pool, positions []*StakePosition) error {
	for _, pos := range positions {
		if pos.FeeCheckpoint > pool.TotalFeesCollected {
			return fmt.Errorf("%w: %s checkpoint=%d collected=%d",
				ErrCheckpointAhead, pos.Owner, pos.FeeCheckpoint, pool.TotalFeesCollected)
		}
	}
	return nil
}

// ValidateShareSupply checks that free plus staked shares equal the shares
// minted by contributions.
func ValidateShareSupply(pool *Pool, accounts []*Account) error {
	var free, contributed uint64
	for _, acct := range accounts {
		var err error
		if free, err = addU64(free, acct.FreeShares); err != nil {
			return fmt.Errorf("%w: %w", ErrShareSupplyMismatch, err)
		}
		if contributed, err = addU64(contributed, acct.Contributed); err != nil {
			return fmt.Errorf("%w: %w", ErrShareSupplyMismatch, err)
		}
	}
	supply, err := addU64(free, pool.TotalStaked)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShareSupplyMismatch, err)
	}
	if supply != pool.TotalContributed || contributed != pool.TotalContributed {
		return fmt.Errorf("%w: free+staked=%d contributed=%d pool=%d",
			ErrShareSupplyMismatch, supply, contributed, pool.TotalContributed)
	}
	return nil
}

// ValidatePayouts checks that rewards paid never exceed fees collected and
// that per-account rewards add up to the pool total.
func ValidatePayouts(pool *Pool, accounts []*Account) error {
	if pool.TotalRewardsPaid > pool.TotalFeesCollected {
		return fmt.Errorf("%w: paid=%d collected=%d", ErrPayoutMismatch, pool.TotalRewardsPaid, pool.TotalFeesCollected)
	}
	var sum uint64
	for _, acct := range accounts {
		var err error
		if sum, err = addU64(sum, acct.RewardsReceived); err != nil {
			return fmt.Errorf("%w: %w", ErrPayoutMismatch, err)
		}
	}
	if sum != pool.TotalRewardsPaid {
		return fmt.Errorf("%w: accounts=%d pool=%d", ErrPayoutMismatch, sum, pool.TotalRewardsPaid)
	}
	return nil
}

func verifyTx(tx Tx) error {
	pool, err := tx.Pool()
	if err != nil {
		return err
	}
	positions, err := tx.Positions()
	if err != nil {
		return err
	}
	accounts, err := tx.Accounts()
	if err != nil {
		return err
	}
	if err := ValidateConservation(pool, positions); err != nil {
		return err
	}
	if err := ValidateCheckpoints(pool, positions); err != nil {
		return err
	}
	if err := ValidateShareSupply(pool, accounts); err != nil {
		return err
	}
	return ValidatePayouts(pool, accounts)
}

// Verify checks every ledger-wide invariant against the committed state.
func (l *Ledger) Verify() error {
	return l.store.View(verifyTx)
}
