package cli

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/crazydevlegend/multisig/internal/multisig"
)

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Decode and display on-chain multisig accounts",
	}

	group := &cobra.Command{
		Use:   "group <address>",
		Short: "Display a group's membership and threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("group address: %w", err)
			}
			info, err := a.rpc.GetAccountInfo(cmd.Context(), addr)
			if err != nil {
				return fmt.Errorf("fetch group %s: %w", addr, err)
			}
			if info.Value == nil {
				return fmt.Errorf("group account %s does not exist", addr)
			}

			data, err := a.client.ReadGroupAccount(info.Value.Owner, info.Value.Data.GetBinary())
			if err != nil {
				return err
			}

			protected, err := a.client.ProtectedKey(addr)
			if err != nil {
				return err
			}

			cmd.Printf("group:     %s\nprotected: %s\nthreshold: %d\n", addr, protected, data.Threshold)
			for i, m := range data.Members {
				cmd.Printf("member %d:  %s (weight %d)\n", i, m.Key, m.Weight)
			}
			return nil
		},
	}

	proposal := &cobra.Command{
		Use:   "proposal <address>",
		Short: "Display a proposal's config and tally",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("proposal address: %w", err)
			}
			info, err := a.rpc.GetAccountInfo(cmd.Context(), addr)
			if err != nil {
				return fmt.Errorf("fetch proposal %s: %w", addr, err)
			}
			if info.Value == nil {
				return fmt.Errorf("proposal account %s does not exist", addr)
			}

			data, err := a.client.ReadProposalAccount(info.Value.Owner, info.Value.Data.GetBinary())
			if errors.Is(err, multisig.ErrAlreadyExecutedOrClosed) {
				cmd.Printf("proposal: %s\nstatus:   executed or closed\n", addr)
				return nil
			}
			if err != nil {
				return err
			}

			cmd.Printf("proposal: %s\ngroup:    %s\ntarget:   %s\nweight:   %d\n",
				addr, data.Config.Group, data.Config.Instruction.ProgramID, data.State.CurrentWeight)
			cmd.Printf("data:     %s\n", base58.Encode(data.Config.Instruction.Data))
			for i, m := range data.Config.Instruction.Accounts {
				flags := ""
				if m.IsSigner {
					flags += "s"
				}
				if m.IsWritable {
					flags += "w"
				}
				cmd.Printf("account %d: %s [%s]\n", i, m.Key, flags)
			}
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.AddCommand(group, proposal)
	return cmd
}
