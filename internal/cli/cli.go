// Package cli wires the multisig client and orchestrators into cobra
// commands. This is the only place transactions are signed and submitted.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crazydevlegend/multisig/internal/config"
	"github.com/crazydevlegend/multisig/internal/multisig"
)

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	client *multisig.Client
	rpc    *rpc.Client
}

// Execute runs the root command.
func Execute() error {
	var (
		configPath  string
		rpcFlag     string
		programFlag string
		verbose     bool
	)

	a := new(app)

	root := &cobra.Command{
		Use:           "multisig",
		Short:         "Threshold-multisig client for protected Solana accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if rpcFlag != "" {
				cfg.RPCEndpoint = rpcFlag
			}
			if programFlag != "" {
				cfg.ProgramID = programFlag
			}
			a.cfg = cfg

			logCfg := zap.NewProductionConfig()
			if verbose {
				logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			log, err := logCfg.Build()
			if err != nil {
				return err
			}
			a.log = log

			pid, err := cfg.Program()
			if err != nil {
				return err
			}
			a.client = multisig.NewClient(pid)
			a.rpc = rpc.New(cfg.RPCEndpoint)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "multisig.toml", "path to TOML config file")
	root.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC endpoint (overrides config)")
	root.PersistentFlags().StringVar(&programFlag, "program", "", "multisig program id (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newInitCmd(a),
		newProposeCmd(a),
		newApproveCmd(a),
		newShowCmd(a),
		newKeysCmd(a),
	)

	return root.Execute()
}

// signAndSend signs a transaction with the configured keypair and submits
// it, mirroring how every transaction leaves this tool.
func (a *app) signAndSend(cmd *cobra.Command, tx *solana.Transaction) error {
	key, err := a.cfg.Keypair()
	if err != nil {
		return err
	}
	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(key.PublicKey()) {
			return &key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	sig, err := a.rpc.SendTransaction(cmd.Context(), tx)
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}
	a.log.Info("transaction sent", zap.Stringer("signature", sig))
	cmd.Println(sig.String())
	return nil
}

// parseMembers parses repeated "pubkey:weight" entries, preserving order.
// Order is part of the group's identity.
func parseMembers(entries []string) ([]memberArg, error) {
	members := make([]memberArg, 0, len(entries))
	for _, entry := range entries {
		idx := strings.LastIndex(entry, ":")
		if idx < 0 {
			return nil, fmt.Errorf("member %q: want pubkey:weight", entry)
		}
		key, err := solana.PublicKeyFromBase58(entry[:idx])
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", entry, err)
		}
		weight, err := strconv.ParseUint(entry[idx+1:], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", entry, err)
		}
		members = append(members, memberArg{key: key, weight: uint32(weight)})
	}
	return members, nil
}

type memberArg struct {
	key    solana.PublicKey
	weight uint32
}

// parseSOL converts a human SOL amount into lamports.
func parseSOL(amount string) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", amount, err)
	}
	lamports := d.Mul(decimal.NewFromUint64(solana.LAMPORTS_PER_SOL))
	if lamports.IsNegative() || !lamports.Equal(lamports.Truncate(0)) {
		return 0, fmt.Errorf("amount %q is not a whole number of lamports", amount)
	}
	return uint64(lamports.IntPart()), nil
}
