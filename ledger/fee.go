package ledger

import (
	"fmt"

	"github.com/bitfsorg/stakepool-go/fingerprint"
	"github.com/bitfsorg/stakepool-go/identity"
)

// MaxBatchRecords bounds the number of ciphertexts accepted in one batch.
const MaxBatchRecords = 4096

// DepositFee forwards amount of fee value into pool custody and raises
// TotalFeesCollected by exactly amount.
func (l *Ledger) DepositFee(amount uint64) (*Receipt, error) {
	return l.mutate(opDepositFee, identity.Address{}, func(tx Tx, ev *Event) error {
		if amount == 0 {
			return ErrZeroAmount
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		if err := creditFee(pool, amount); err != nil {
			return err
		}
		ev.Amount = amount
		return tx.PutPool(pool)
	})
}

// AcceptBatch records the fingerprint of each ciphertext submitted by
// submitter and charges the pool's fixed BatchFee once, atomically: either
// the records and the fee are both committed, or neither is.
func (l *Ledger) AcceptBatch(submitter identity.Address, ciphertexts [][]byte) (*Receipt, error) {
	fps := fingerprint.OfBatch(ciphertexts)
	return l.mutate(opAcceptBatch, submitter, func(tx Tx, ev *Event) error {
		if len(fps) == 0 {
			return ErrEmptyBatch
		}
		if len(fps) > MaxBatchRecords {
			return fmt.Errorf("%w: %d records, max %d", ErrBatchTooLarge, len(fps), MaxBatchRecords)
		}
		pool, err := tx.Pool()
		if err != nil {
			return err
		}
		if pool.BatchFee > 0 {
			if err := creditFee(pool, pool.BatchFee); err != nil {
				return err
			}
		}
		for i, fp := range fps {
			rec := &Record{
				Mark:        ev.Mark,
				Index:       uint32(i),
				Submitter:   submitter,
				Fingerprint: fp,
				Time:        ev.Time,
			}
			if err := tx.AppendRecord(rec); err != nil {
				return err
			}
		}
		ev.Amount = pool.BatchFee
		return tx.PutPool(pool)
	})
}

func creditFee(pool *Pool, amount uint64) error {
	total, err := addU64(pool.TotalFeesCollected, amount)
	if err != nil {
		return err
	}
	pool.TotalFeesCollected = total
	if _, err := pool.CustodyValue(); err != nil {
		return err
	}
	return nil
}
