package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crazydevlegend/multisig/internal/schema"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		memberFlags    []string
		threshold      uint32
		balance        string
		protectedOwner string
		protectedSpace uint64
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a group and its protected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := parseMembers(memberFlags)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				return fmt.Errorf("at least one --member is required")
			}
			lamports, err := parseSOL(balance)
			if err != nil {
				return err
			}

			group := schema.GroupData{Threshold: threshold}
			for _, m := range members {
				group.Members = append(group.Members, schema.GroupMember{Key: m.key, Weight: m.weight})
			}

			var protected *schema.ProtectedAccountConfig
			if protectedOwner != "" {
				owner, err := solana.PublicKeyFromBase58(protectedOwner)
				if err != nil {
					return fmt.Errorf("protected owner: %w", err)
				}
				rent, err := a.rpc.GetMinimumBalanceForRentExemption(
					cmd.Context(), protectedSpace, rpc.CommitmentFinalized)
				if err != nil {
					return fmt.Errorf("rent exemption: %w", err)
				}
				protected = &schema.ProtectedAccountConfig{
					Lamports: rent,
					Space:    protectedSpace,
					Owner:    owner,
				}
			}

			key, err := a.cfg.Keypair()
			if err != nil {
				return err
			}
			payer := key.PublicKey()

			ix, err := a.client.Init(group, lamports, protected, payer)
			if err != nil {
				return err
			}

			groupKey, err := a.client.GroupKey(group)
			if err != nil {
				return err
			}
			protectedKey, err := a.client.ProtectedKey(groupKey)
			if err != nil {
				return err
			}
			a.log.Info("initializing group",
				zap.Stringer("group", groupKey),
				zap.Stringer("protected", protectedKey),
				zap.Int("members", len(group.Members)),
				zap.Uint32("threshold", group.Threshold),
			)

			recent, err := a.rpc.GetLatestBlockhash(cmd.Context(), rpc.CommitmentFinalized)
			if err != nil {
				return fmt.Errorf("fetch blockhash: %w", err)
			}
			tx, err := solana.NewTransaction(
				[]solana.Instruction{ix},
				recent.Value.Blockhash,
				solana.TransactionPayer(payer),
			)
			if err != nil {
				return fmt.Errorf("build transaction: %w", err)
			}

			cmd.Printf("group:     %s\nprotected: %s\n", groupKey, protectedKey)
			return a.signAndSend(cmd, tx)
		},
	}

	cmd.Flags().StringArrayVar(&memberFlags, "member", nil, "group member as pubkey:weight (repeatable, order matters)")
	cmd.Flags().Uint32Var(&threshold, "threshold", 0, "approval weight threshold")
	cmd.Flags().StringVar(&balance, "balance", "0", "initial protected account balance in SOL")
	cmd.Flags().StringVar(&protectedOwner, "protected-owner", "", "program to own an extra protected-side account")
	cmd.Flags().Uint64Var(&protectedSpace, "protected-space", 0, "size of the extra protected-side account")

	return cmd
}
