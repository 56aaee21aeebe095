package ledger

import (
	"fmt"
	"time"

	"github.com/bitfsorg/stakepool-go/identity"
)

// Contribute takes amount of value from owner into pool custody and mints
// amount free shares to owner's account. Contributions are accepted while
// now <= WindowEnd. Positions and TotalStaked are not touched.
func (l *Ledger) Contribute(owner identity.Address, amount uint64) (*Receipt, error) {
	return l.mutate(opContribute, owner, func(tx Tx, ev *Event) error {
		if amount == 0 {
			return ErrZeroAmount
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		if !pool.FundingOpen(ev.Time) {
			return fmt.Errorf("%w: window ended %s", ErrFundingClosed, pool.WindowEnd.Format(time.RFC3339))
		}
		acct, err := tx.Account(owner)
		if err != nil {
			return err
		}

		if pool.TotalContributed, err = addU64(pool.TotalContributed, amount); err != nil {
			return err
		}
		if _, err = pool.CustodyValue(); err != nil {
			return err
		}
		if acct.FreeShares, err = addU64(acct.FreeShares, amount); err != nil {
			return err
		}
		if acct.Contributed, err = addU64(acct.Contributed, amount); err != nil {
			return err
		}

		if err := tx.PutPool(pool); err != nil {
			return err
		}
		if err := tx.PutAccount(acct); err != nil {
			return err
		}
		ev.Amount = amount
		return nil
	})
}
