package multisig

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/crazydevlegend/multisig/internal/schema"
)

// Seed namespace tags. Each tag opens a disjoint address namespace, so the
// same canonical bytes can never collide across group, proposal and
// protected addresses.
const (
	SeedTagGroup     byte = 0x00
	SeedTagProposal  byte = 0x01
	SeedTagProtected byte = 0x02
)

// deriveAddress hashes the canonical bytes and runs the standard Solana
// program-address search over [tag, digest]. Hashing first keeps the seed
// list fixed-size regardless of how large the serialized value is.
func (c *Client) deriveAddress(tag byte, canonical []byte) (solana.PublicKey, error) {
	digest := sha256.Sum256(canonical)
	addr, _, err := solana.FindProgramAddress(
		[][]byte{{tag}, digest[:]},
		c.programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: seed tag 0x%02x: %v", ErrDerivationExhausted, tag, err)
	}
	return addr, nil
}

// GroupKey derives the address of the account holding a group's membership.
// Member order matters: reordering members derives a different address.
func (c *Client) GroupKey(group schema.GroupData) (solana.PublicKey, error) {
	canonical, err := schema.Encode(group)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return c.deriveAddress(SeedTagGroup, canonical)
}

// ProposalKey derives a proposal account address from its config. Because
// the config's canonical bytes are hashed, two proposals with byte-identical
// (group, instruction) pairs intentionally collide to one address:
// re-proposing the same instruction is idempotent.
func (c *Client) ProposalKey(cfg schema.ProposalConfig) (solana.PublicKey, error) {
	canonical, err := schema.Encode(cfg)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return c.deriveAddress(SeedTagProposal, canonical)
}

// ProtectedKey derives the protected authority address for a group account.
func (c *Client) ProtectedKey(group solana.PublicKey) (solana.PublicKey, error) {
	return c.deriveAddress(SeedTagProtected, group[:])
}
