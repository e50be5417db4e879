package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/crazydevlegend/multisig/internal/proposer"
)

func newProposeCmd(a *app) *cobra.Command {
	var groupFlag string

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose instructions for the group's protected account",
	}
	cmd.PersistentFlags().StringVar(&groupFlag, "group", "", "group account address")

	runProposition := func(cmd *cobra.Command, prop proposer.Proposition) error {
		group, err := solana.PublicKeyFromBase58(groupFlag)
		if err != nil {
			return fmt.Errorf("group address: %w", err)
		}
		key, err := a.cfg.Keypair()
		if err != nil {
			return err
		}

		orch := proposer.New(a.client, a.rpc, a.log)
		result, err := orch.Propose(cmd.Context(), group, key.PublicKey(), prop)
		if err != nil {
			return err
		}
		for _, p := range result.Proposals {
			cmd.Printf("proposal: %s\n", p)
		}

		tx, err := orch.Transaction(cmd.Context(), result, key.PublicKey())
		if err != nil {
			return err
		}
		return a.signAndSend(cmd, tx)
	}

	transfer := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer SOL out of the protected account",
		RunE: func(cmd *cobra.Command, args []string) error {
			toFlag, _ := cmd.Flags().GetString("to")
			amountFlag, _ := cmd.Flags().GetString("amount")
			to, err := solana.PublicKeyFromBase58(toFlag)
			if err != nil {
				return fmt.Errorf("recipient: %w", err)
			}
			lamports, err := parseSOL(amountFlag)
			if err != nil {
				return err
			}
			return runProposition(cmd, proposer.Proposition{
				Transfer: &proposer.TransferParams{To: to, Lamports: lamports},
			})
		},
	}
	transfer.Flags().String("to", "", "recipient address")
	transfer.Flags().String("amount", "", "amount in SOL")

	mint := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens with the protected account as mint authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			mintFlag, _ := cmd.Flags().GetString("mint")
			destFlag, _ := cmd.Flags().GetString("dest")
			amount, _ := cmd.Flags().GetUint64("amount")
			mintKey, err := solana.PublicKeyFromBase58(mintFlag)
			if err != nil {
				return fmt.Errorf("mint: %w", err)
			}
			dest, err := solana.PublicKeyFromBase58(destFlag)
			if err != nil {
				return fmt.Errorf("dest: %w", err)
			}
			return runProposition(cmd, proposer.Proposition{
				MintTo: &proposer.MintToParams{Mint: mintKey, Destination: dest, Amount: amount},
			})
		},
	}
	mint.Flags().String("mint", "", "token mint address")
	mint.Flags().String("dest", "", "destination token account")
	mint.Flags().Uint64("amount", 0, "amount in base units")

	tokenAccount := &cobra.Command{
		Use:   "token-account",
		Short: "Create a seeded token account owned by the protected authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			mintFlag, _ := cmd.Flags().GetString("mint")
			seed, _ := cmd.Flags().GetString("seed")
			mintKey, err := solana.PublicKeyFromBase58(mintFlag)
			if err != nil {
				return fmt.Errorf("mint: %w", err)
			}
			return runProposition(cmd, proposer.Proposition{
				CreateTokenAccount: &proposer.CreateTokenAccountParams{Mint: mintKey, Seed: seed},
			})
		},
	}
	tokenAccount.Flags().String("mint", "", "token mint address")
	tokenAccount.Flags().String("seed", "", "seed string for the derived account")

	upgradeAuthority := &cobra.Command{
		Use:   "upgrade-authority",
		Short: "Delegate a program's upgrade authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			programFlag, _ := cmd.Flags().GetString("target")
			newAuthFlag, _ := cmd.Flags().GetString("new-authority")
			program, err := solana.PublicKeyFromBase58(programFlag)
			if err != nil {
				return fmt.Errorf("target program: %w", err)
			}
			newAuth, err := solana.PublicKeyFromBase58(newAuthFlag)
			if err != nil {
				return fmt.Errorf("new authority: %w", err)
			}
			return runProposition(cmd, proposer.Proposition{
				SetUpgradeAuthority: &proposer.SetUpgradeAuthorityParams{
					Program:      program,
					NewAuthority: newAuth,
				},
			})
		},
	}
	upgradeAuthority.Flags().String("target", "", "program whose authority to delegate")
	upgradeAuthority.Flags().String("new-authority", "", "new upgrade authority")

	upgrade := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade a program from a staged buffer",
		RunE: func(cmd *cobra.Command, args []string) error {
			programFlag, _ := cmd.Flags().GetString("target")
			bufferFlag, _ := cmd.Flags().GetString("buffer")
			spillFlag, _ := cmd.Flags().GetString("spill")
			program, err := solana.PublicKeyFromBase58(programFlag)
			if err != nil {
				return fmt.Errorf("target program: %w", err)
			}
			buffer, err := solana.PublicKeyFromBase58(bufferFlag)
			if err != nil {
				return fmt.Errorf("buffer: %w", err)
			}
			spill, err := solana.PublicKeyFromBase58(spillFlag)
			if err != nil {
				return fmt.Errorf("spill: %w", err)
			}
			return runProposition(cmd, proposer.Proposition{
				Upgrade: &proposer.UpgradeParams{Program: program, Buffer: buffer, Spill: spill},
			})
		},
	}
	upgrade.Flags().String("target", "", "program to upgrade")
	upgrade.Flags().String("buffer", "", "staged buffer account")
	upgrade.Flags().String("spill", "", "account receiving freed lamports")

	cmd.AddCommand(transfer, mint, tokenAccount, upgradeAuthority, upgrade)
	return cmd
}
