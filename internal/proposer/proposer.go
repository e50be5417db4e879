// Package proposer turns semantic propositions into batched propose
// instructions, pricing each proposal account's rent exactly.
package proposer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/crazydevlegend/multisig/internal/multisig"
	"github.com/crazydevlegend/multisig/internal/schema"
)

// Orchestrator drives the protocol client for one group at a time. The RPC
// client is used only for rent queries and blockhash fetches; instruction
// construction itself stays pure.
type Orchestrator struct {
	client *multisig.Client
	rpc    *rpc.Client
	log    *zap.Logger
}

func New(client *multisig.Client, rpcClient *rpc.Client, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{client: client, rpc: rpcClient, log: log}
}

// Result lists what a batch produced: the derived proposal addresses in
// submission order, and the propose instructions for one transaction.
type Result struct {
	Proposals    []solana.PublicKey
	Instructions []solana.Instruction
}

// Propose translates each proposition, emits one propose instruction per
// resulting low-level instruction, and batches everything for a single
// transaction. Rent is fetched once per distinct account size.
func (o *Orchestrator) Propose(
	ctx context.Context,
	group solana.PublicKey,
	proposer solana.PublicKey,
	props ...Proposition,
) (*Result, error) {
	protected, err := o.client.ProtectedKey(group)
	if err != nil {
		return nil, err
	}

	rentBySpace := make(map[uint64]uint64)
	rentExempt := func(space uint64) (uint64, error) {
		if lamports, ok := rentBySpace[space]; ok {
			return lamports, nil
		}
		lamports, err := o.rpc.GetMinimumBalanceForRentExemption(ctx, space, rpc.CommitmentFinalized)
		if err != nil {
			return 0, fmt.Errorf("rent exemption for %d bytes: %w", space, err)
		}
		rentBySpace[space] = lamports
		return lamports, nil
	}

	result := new(Result)
	for _, prop := range props {
		instructions, err := translate(prop, protected, rentExempt)
		if err != nil {
			return nil, err
		}
		for _, inst := range instructions {
			cfg := schema.ProposalConfig{Group: group, Instruction: inst}
			lamports, err := rentExempt(multisig.ProposalAccountSpace(cfg))
			if err != nil {
				return nil, err
			}
			ix, err := o.client.Propose(inst, lamports, group, proposer)
			if err != nil {
				return nil, err
			}
			proposalKey, err := o.client.ProposalKey(cfg)
			if err != nil {
				return nil, err
			}
			result.Proposals = append(result.Proposals, proposalKey)
			result.Instructions = append(result.Instructions, ix)

			o.log.Info("proposal built",
				zap.Stringer("proposal", proposalKey),
				zap.Stringer("target_program", inst.ProgramID),
				zap.Uint64("rent_lamports", lamports),
			)
		}
	}
	return result, nil
}

// Transaction wraps a batch into a single unsigned transaction with a fresh
// blockhash. Signing and submission stay with the caller.
func (o *Orchestrator) Transaction(ctx context.Context, result *Result, payer solana.PublicKey) (*solana.Transaction, error) {
	recent, err := o.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(
		result.Instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	return tx, nil
}
