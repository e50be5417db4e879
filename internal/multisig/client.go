// Package multisig builds the instructions of the threshold-multisig
// protocol and derives the program addresses its on-chain half expects.
// Everything here is a pure function over its inputs; network I/O stays with
// the caller.
package multisig

import (
	"github.com/gagliardetto/solana-go"

	"github.com/crazydevlegend/multisig/internal/schema"
)

// Client builds protocol instructions for one program identity. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	programID solana.PublicKey
}

func NewClient(programID solana.PublicKey) *Client {
	return &Client{programID: programID}
}

// ProgramID returns the program identity this client targets.
func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// Init builds the instruction that creates a group account and funds its
// protected authority with initialBalance lamports. protected may be nil.
//
// Accounts: payer (signer, writable), group (writable), system program,
// protected (writable).
func (c *Client) Init(
	group schema.GroupData,
	initialBalance uint64,
	protected *schema.ProtectedAccountConfig,
	payer solana.PublicKey,
) (solana.Instruction, error) {
	groupKey, err := c.GroupKey(group)
	if err != nil {
		return nil, err
	}
	protectedKey, err := c.ProtectedKey(groupKey)
	if err != nil {
		return nil, err
	}

	data, err := schema.EncodeEnvelope(schema.NewInitEnvelope(schema.InitArgs{
		Group:          group,
		InitialBalance: initialBalance,
		Protected:      protected,
	}))
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: groupKey, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: protectedKey, IsSigner: false, IsWritable: true},
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// Propose builds the instruction that records inst as a pending proposal for
// group, funded with lamports for the proposal account's rent.
//
// Accounts: proposer (signer, writable), group (writable), proposal
// (writable), system program, target program, then the proposed
// instruction's own accounts with the protected-signer rewrite applied.
func (c *Client) Propose(
	inst schema.ProposedInstruction,
	lamports uint64,
	group solana.PublicKey,
	proposer solana.PublicKey,
) (solana.Instruction, error) {
	proposalKey, err := c.ProposalKey(schema.ProposalConfig{Group: group, Instruction: inst})
	if err != nil {
		return nil, err
	}
	protectedKey, err := c.ProtectedKey(group)
	if err != nil {
		return nil, err
	}

	data, err := schema.EncodeEnvelope(schema.NewProposeEnvelope(schema.ProposeArgs{
		Instruction: inst,
		Lamports:    lamports,
	}))
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: proposer, IsSigner: true, IsWritable: true},
		{PublicKey: group, IsSigner: false, IsWritable: true},
		{PublicKey: proposalKey, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: inst.ProgramID, IsSigner: false, IsWritable: false},
	}
	accounts = append(accounts, remapProposedAccounts(inst.Accounts, protectedKey)...)

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// Approve builds the instruction that adds the approver's weight to a
// proposal. The payload is the empty Approve variant; everything the program
// needs is on the account list.
//
// Accounts: approver (signer, writable), group (writable), proposal
// (writable), target program, then the proposed instruction's accounts with
// the same protected-signer rewrite as Propose.
func (c *Client) Approve(
	proposal solana.PublicKey,
	cfg schema.ProposalConfig,
	approver solana.PublicKey,
) (solana.Instruction, error) {
	protectedKey, err := c.ProtectedKey(cfg.Group)
	if err != nil {
		return nil, err
	}

	data, err := schema.EncodeEnvelope(schema.NewApproveEnvelope())
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: approver, IsSigner: true, IsWritable: true},
		{PublicKey: cfg.Group, IsSigner: false, IsWritable: true},
		{PublicKey: proposal, IsSigner: false, IsWritable: true},
		{PublicKey: cfg.Instruction.ProgramID, IsSigner: false, IsWritable: false},
	}
	accounts = append(accounts, remapProposedAccounts(cfg.Instruction.Accounts, protectedKey)...)

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// remapProposedAccounts copies the proposed instruction's account list,
// forcing is_signer off wherever the protected account appears: it signs
// through program authority, never through a held key. Propose and Approve
// must apply the identical rewrite or the program rejects the mismatch.
func remapProposedAccounts(metas []schema.AccountMeta, protected solana.PublicKey) []*solana.AccountMeta {
	out := make([]*solana.AccountMeta, len(metas))
	for i, m := range metas {
		signer := m.IsSigner
		if m.Key.Equals(protected) {
			signer = false
		}
		out[i] = &solana.AccountMeta{
			PublicKey:  m.Key,
			IsSigner:   signer,
			IsWritable: m.IsWritable,
		}
	}
	return out
}
