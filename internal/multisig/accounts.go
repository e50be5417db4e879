package multisig

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/crazydevlegend/multisig/internal/schema"
)

// Account-type tags. One byte precedes every account payload on chain; the
// decoder skips exactly that byte before reading the canonical encoding.
const (
	accountTagGroup    byte = 0
	accountTagProposal byte = 1
)

// accountTagSize is the fixed per-account overhead beyond the canonical
// payload encoding.
const accountTagSize = 1

// ReadGroupAccount decodes a raw group account fetched from chain. owner is
// the owning program reported alongside the account data.
func (c *Client) ReadGroupAccount(owner solana.PublicKey, data []byte) (schema.GroupData, error) {
	payload, err := c.accountPayload(owner, data, accountTagGroup)
	if err != nil {
		return schema.GroupData{}, err
	}

	var group schema.GroupData
	dec := bin.NewBorshDecoder(payload)
	if err := group.UnmarshalWithDecoder(dec); err != nil {
		return schema.GroupData{}, fmt.Errorf("decode group account: %w", err)
	}
	return group, nil
}

// ReadProposalAccount decodes a raw proposal account fetched from chain.
// A zeroed payload is reported as ErrAlreadyExecutedOrClosed: execution
// wipes the account, and that terminal state must stay distinguishable from
// corrupt data.
func (c *Client) ReadProposalAccount(owner solana.PublicKey, data []byte) (schema.ProposalData, error) {
	payload, err := c.accountPayload(owner, data, accountTagProposal)
	if err != nil {
		return schema.ProposalData{}, err
	}
	if allZero(payload) {
		return schema.ProposalData{}, ErrAlreadyExecutedOrClosed
	}

	var proposal schema.ProposalData
	dec := bin.NewBorshDecoder(payload)
	if err := proposal.UnmarshalWithDecoder(dec); err != nil {
		return schema.ProposalData{}, fmt.Errorf("decode proposal account: %w", err)
	}
	return proposal, nil
}

func (c *Client) accountPayload(owner solana.PublicKey, data []byte, wantTag byte) ([]byte, error) {
	if !owner.Equals(c.programID) {
		return nil, fmt.Errorf("%w: owned by %s", ErrOwnerMismatch, owner)
	}
	if len(data) < accountTagSize {
		return nil, fmt.Errorf("decode account: empty data")
	}
	if data[0] != wantTag {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrTypeMismatch, wantTag, data[0])
	}
	return data[accountTagSize:], nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// GroupAccountSpace returns the exact allocation a group account needs.
// Under-allocation fails at execution time on chain, not here, so this must
// match the program's allocation byte-for-byte.
func GroupAccountSpace(group schema.GroupData) uint64 {
	return accountTagSize + group.Size()
}

// ProposalAccountSpace returns the exact allocation a proposal account
// needs: type tag, config, and the fixed-size tally the program maintains.
func ProposalAccountSpace(cfg schema.ProposalConfig) uint64 {
	return accountTagSize + schema.ProposalData{Config: cfg}.Size()
}
