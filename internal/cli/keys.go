package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crazydevlegend/multisig/internal/schema"
)

// keys derives addresses without touching the network, so independent
// parties can agree on them before anything is submitted.
func newKeysCmd(a *app) *cobra.Command {
	var (
		memberFlags []string
		threshold   uint32
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Derive group and protected addresses for a membership",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := parseMembers(memberFlags)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				return fmt.Errorf("at least one --member is required")
			}

			group := schema.GroupData{Threshold: threshold}
			for _, m := range members {
				group.Members = append(group.Members, schema.GroupMember{Key: m.key, Weight: m.weight})
			}

			groupKey, err := a.client.GroupKey(group)
			if err != nil {
				return err
			}
			protectedKey, err := a.client.ProtectedKey(groupKey)
			if err != nil {
				return err
			}

			cmd.Printf("group:     %s\nprotected: %s\n", groupKey, protectedKey)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&memberFlags, "member", nil, "group member as pubkey:weight (repeatable, order matters)")
	cmd.Flags().Uint32Var(&threshold, "threshold", 0, "approval weight threshold")
	return cmd
}
