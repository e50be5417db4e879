package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/crazydevlegend/multisig/internal/approver"
)

func newApproveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <proposal>...",
		Short: "Approve one or more pending proposals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposals := make([]solana.PublicKey, 0, len(args))
			for _, arg := range args {
				p, err := solana.PublicKeyFromBase58(arg)
				if err != nil {
					return fmt.Errorf("proposal %q: %w", arg, err)
				}
				proposals = append(proposals, p)
			}

			key, err := a.cfg.Keypair()
			if err != nil {
				return err
			}

			orch := approver.New(a.client, a.rpc, a.log)
			result, err := orch.Approve(cmd.Context(), key.PublicKey(), proposals...)
			if err != nil {
				return err
			}
			for _, p := range result.Skipped {
				cmd.Printf("skipped (already executed): %s\n", p)
			}
			if len(result.Instructions) == 0 {
				cmd.Println("nothing to approve")
				return nil
			}

			tx, err := orch.Transaction(cmd.Context(), result, key.PublicKey())
			if err != nil {
				return err
			}
			return a.signAndSend(cmd, tx)
		},
	}
}
