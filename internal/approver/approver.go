// Package approver reads pending proposals from chain and batches approve
// instructions for them.
package approver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/crazydevlegend/multisig/internal/multisig"
)

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

// Result separates proposals that were approved from proposals that turned
// out to be already executed or closed. Skips are expected during normal
// operation, not failures.
type Result struct {
	Approved     []solana.PublicKey
	Skipped      []solana.PublicKey
	Instructions []solana.Instruction
}

// Approve validates each proposal account and emits one approve instruction
// per live proposal, batched for a single transaction. A proposal whose
// payload has been zeroed is skipped; any other validation failure aborts
// the batch.
func (o *Orchestrator) Approve(
	ctx context.Context,
	approver solana.PublicKey,
	proposals ...solana.PublicKey,
) (*Result, error) {
	result := new(Result)
	for _, proposal := range proposals {
		info, err := o.rpc.GetAccountInfo(ctx, proposal)
		if err != nil {
			return nil, fmt.Errorf("fetch proposal %s: %w", proposal, err)
		}
		if info.Value == nil {
			return nil, fmt.Errorf("proposal account %s does not exist", proposal)
		}

		data, err := o.client.ReadProposalAccount(info.Value.Owner, info.Value.Data.GetBinary())
		if errors.Is(err, multisig.ErrAlreadyExecutedOrClosed) {
			o.log.Info("skipping executed proposal", zap.Stringer("proposal", proposal))
			result.Skipped = append(result.Skipped, proposal)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("proposal %s: %w", proposal, err)
		}

		ix, err := o.client.Approve(proposal, data.Config, approver)
		if err != nil {
			return nil, err
		}
		result.Approved = append(result.Approved, proposal)
		result.Instructions = append(result.Instructions, ix)

		o.log.Info("approval built",
			zap.Stringer("proposal", proposal),
			zap.Uint32("current_weight", data.State.CurrentWeight),
		)
	}
	return result, nil
}

// Transaction wraps the batch into a single unsigned transaction.
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
