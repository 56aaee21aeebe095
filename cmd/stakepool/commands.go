package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/stakepool-go/config"
	"github.com/bitfsorg/stakepool-go/fingerprint"
	"github.com/bitfsorg/stakepool-go/identity"
	"github.com/bitfsorg/stakepool-go/ledger"
)

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the pool and open the funding window",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			path := config.ConfigPath(a.cfg.DataDir)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if err := config.SaveConfig(path, a.cfg); err != nil {
					return err
				}
			}
			pool, err := a.ledger.Genesis(ledger.GenesisParams{
				FundingWindow: a.cfg.FundingWindow,
				ShareAsset:    a.cfg.ShareAsset,
				BatchFee:      a.cfg.BatchFee,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pool created: asset=%s batch_fee=%d window=%s..%s\n",
				pool.ShareAsset, pool.BatchFee,
				pool.WindowStart.Format(time.RFC3339), pool.WindowEnd.Format(time.RFC3339))
			return nil
		}),
	}
}

// ownerAmountCmd builds a command taking ID and AMOUNT.
func ownerAmountCmd(use, short string, op func(l *ledger.Ledger, owner identity.Address, amount uint64) (*ledger.Receipt, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			owner, err := identity.Parse(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			r, err := op(a.ledger, owner, amount)
			if err != nil {
				return err
			}
			printReceipt(cmd, use, r)
			return nil
		}),
	}
}

func newContributeCmd() *cobra.Command {
	return ownerAmountCmd("contribute", "Contribute value and mint free shares", (*ledger.Ledger).Contribute)
}

func newStakeCmd() *cobra.Command {
	return ownerAmountCmd("stake", "Lock free shares into the pool", (*ledger.Ledger).Stake)
}

func newUnstakeCmd() *cobra.Command {
	return ownerAmountCmd("unstake", "Return staked shares to the free balance", (*ledger.Ledger).Unstake)
}

func newClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim ID",
		Short: "Pay the pro-rata share of fees collected since the last settlement",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			owner, err := identity.Parse(args[0])
			if err != nil {
				return err
			}
			r, err := a.ledger.Claim(owner)
			if err != nil {
				return err
			}
			if r.NoOp() {
				fmt.Fprintln(cmd.OutOrStdout(), "claim: no stake, nothing to claim")
				return nil
			}
			printReceipt(cmd, "claim", r)
			return nil
		}),
	}
}

func newDepositFeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit-fee AMOUNT",
		Short: "Deposit fee value into pool custody",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			r, err := a.ledger.DepositFee(amount)
			if err != nil {
				return err
			}
			printReceipt(cmd, "deposit-fee", r)
			return nil
		}),
	}
}

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit ID FILE...",
		Short: "Record ciphertext fingerprints and charge the batch fee",
		Args:  cobra.MinimumNArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			submitter, err := identity.Parse(args[0])
			if err != nil {
				return err
			}
			batch := make([][]byte, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				batch = append(batch, data)
			}
			r, err := a.ledger.AcceptBatch(submitter, batch)
			if err != nil {
				return err
			}
			printReceipt(cmd, "submit", r)
			for i, path := range args[1:] {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", fingerprint.Of(batch[i]), path)
			}
			return nil
		}),
	}
}

func newPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool",
		Short: "Show pool totals",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			pool, err := a.ledger.Pool()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "share asset\t%s\n", pool.ShareAsset)
			fmt.Fprintf(w, "window\t%s .. %s\n", pool.WindowStart.Format(time.RFC3339), pool.WindowEnd.Format(time.RFC3339))
			fmt.Fprintf(w, "funding open\t%t\n", pool.FundingOpen(time.Now()))
			fmt.Fprintf(w, "batch fee\t%d\n", pool.BatchFee)
			fmt.Fprintf(w, "total contributed\t%d\n", pool.TotalContributed)
			fmt.Fprintf(w, "total staked\t%d\n", pool.TotalStaked)
			fmt.Fprintf(w, "fees collected\t%d\n", pool.TotalFeesCollected)
			fmt.Fprintf(w, "rewards paid\t%d\n", pool.TotalRewardsPaid)
			fmt.Fprintf(w, "undistributed\t%d\n", pool.Undistributed())
			return w.Flush()
		}),
	}
}

func newPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position ID",
		Short: "Show a participant's position, balance and pending reward",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			owner, err := identity.Parse(args[0])
			if err != nil {
				return err
			}
			acct, err := a.ledger.Account(owner)
			if err != nil {
				return err
			}
			pending, err := a.ledger.PendingReward(owner)
			if err != nil {
				return err
			}
			pos, found, err := a.ledger.Position(owner)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "owner\t%s\n", a.render(owner))
			fmt.Fprintf(w, "free shares\t%d\n", acct.FreeShares)
			fmt.Fprintf(w, "contributed\t%d\n", acct.Contributed)
			fmt.Fprintf(w, "rewards received\t%d\n", acct.RewardsReceived)
			if found {
				fmt.Fprintf(w, "staked\t%d\n", pos.StakedAmount)
				fmt.Fprintf(w, "fee checkpoint\t%d\n", pos.FeeCheckpoint)
				fmt.Fprintf(w, "checkpoint mark\t%d\n", pos.CheckpointMark)
				fmt.Fprintf(w, "pending reward\t%d\n", pending)
			} else {
				fmt.Fprintf(w, "position\tnone\n")
			}
			return w.Flush()
		}),
	}
}

func newPositionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List every stake position",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			positions, err := a.ledger.Positions()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OWNER\tSTAKED\tCHECKPOINT\tMARK")
			for _, pos := range positions {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", a.render(pos.Owner), pos.StakedAmount, pos.FeeCheckpoint, pos.CheckpointMark)
			}
			return w.Flush()
		}),
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the ledger journal",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			events, err := a.ledger.Events()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MARK\tTIME\tKIND\tOWNER\tAMOUNT\tREWARD")
			for _, ev := range events {
				owner := "-"
				if !ev.Owner.IsZero() {
					owner = a.render(ev.Owner)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
					ev.Mark, ev.Time.Format(time.RFC3339), ev.Kind, owner, ev.Amount, ev.Reward)
			}
			return w.Flush()
		}),
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check ledger invariants",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.ledger.Verify(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}),
	}
}
