// Command stakepool operates a stake-weighted fee-distribution pool backed by
// a local bbolt ledger.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/stakepool-go/config"
	"github.com/bitfsorg/stakepool-go/identity"
	"github.com/bitfsorg/stakepool-go/ledger"
	"github.com/bitfsorg/stakepool-go/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stakepool",
		Short:        "Stake-weighted fee-distribution pool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("datadir", "", "data directory (default ~/.stakepool)")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().String("network", "", "address network (mainnet, testnet, regtest)")
	root.PersistentFlags().String("policy", "", "settlement policy (settle, forfeit)")

	root.AddCommand(
		newInitCmd(),
		newContributeCmd(),
		newStakeCmd(),
		newUnstakeCmd(),
		newClaimCmd(),
		newDepositFeeCmd(),
		newSubmitCmd(),
		newPoolCmd(),
		newPositionCmd(),
		newPositionsCmd(),
		newHistoryCmd(),
		newVerifyCmd(),
	)
	return root
}

// app is the per-invocation environment shared by subcommands.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	net    *identity.Network
	store  *ledger.BoltStore
	ledger *ledger.Ledger
}

// openApp resolves configuration and opens the ledger database.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	log := logger.NewWithLevel(cmd.ErrOrStderr(), level)

	net, err := identity.GetNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	policy, err := ledger.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	store, err := ledger.OpenBoltStore(filepath.Join(cfg.DataDir, "ledger.db"))
	if err != nil {
		return nil, err
	}
	log.Debug("ledger opened", "datadir", cfg.DataDir, "network", net.Name, "policy", policy.String())

	return &app{
		cfg:   cfg,
		log:   log,
		net:   net,
		store: store,
		ledger: ledger.New(store,
			ledger.WithPolicy(policy),
			ledger.WithLogger(log),
			ledger.WithInvariantChecks(),
		),
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

// run opens the app, calls fn and closes the store.
func run(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// render formats an owner as a P2PKH address on the configured network,
// falling back to hex.
func (a *app) render(owner identity.Address) string {
	s, err := owner.P2PKH(a.net)
	if err != nil {
		return owner.String()
	}
	return s
}

func printReceipt(cmd *cobra.Command, op string, r *ledger.Receipt) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: mark=%d amount=%d reward=%d event=%s\n",
		op, r.Mark, r.Amount, r.Reward, r.EventID)
}
