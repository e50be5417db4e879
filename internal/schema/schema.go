// Package schema implements the canonical wire encoding shared with the
// on-chain multisig program. Field order, integer widths and tag values are
// part of the protocol: the same bytes are both transmitted on the wire and
// hashed to derive account addresses, so any change here must be versioned.
//
// Encoding rules: fixed-width unsigned integers are little-endian, 32-byte
// keys are written verbatim, sequences carry a u32 element count, booleans
// and option flags are single bytes.
package schema

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// GroupMember is one weighted signer of a group.
type GroupMember struct {
	Key    solana.PublicKey
	Weight uint32
}

const groupMemberSize = solana.PublicKeyLength + 4

func (m GroupMember) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(m.Key[:], false); err != nil {
		return err
	}
	return enc.WriteUint32(m.Weight, bin.LE)
}

func (m *GroupMember) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if m.Key, err = readPublicKey(dec); err != nil {
		return err
	}
	m.Weight, err = dec.ReadUint32(bin.LE)
	return err
}

// GroupData is the immutable membership record of a group. Member order is
// significant: it participates in the canonical hash, so the same members in
// a different order name a different group. Zero weights and a zero
// threshold are accepted as-is; threshold semantics belong to the on-chain
// program, not this client.
type GroupData struct {
	Members   []GroupMember
	Threshold uint32
}

func (g GroupData) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint32(uint32(len(g.Members)), bin.LE); err != nil {
		return err
	}
	for _, m := range g.Members {
		if err := m.MarshalWithEncoder(enc); err != nil {
			return err
		}
	}
	return enc.WriteUint32(g.Threshold, bin.LE)
}

func (g *GroupData) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	g.Members = make([]GroupMember, n)
	for i := range g.Members {
		if err = g.Members[i].UnmarshalWithDecoder(dec); err != nil {
			return err
		}
	}
	g.Threshold, err = dec.ReadUint32(bin.LE)
	return err
}

// Size returns the exact canonical byte length.
func (g GroupData) Size() uint64 {
	return 4 + uint64(len(g.Members))*groupMemberSize + 4
}

// ProtectedAccountConfig describes an extra account the protected authority
// should own at initialization time.
type ProtectedAccountConfig struct {
	Lamports uint64
	Space    uint64
	Owner    solana.PublicKey
}

func (c ProtectedAccountConfig) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint64(c.Lamports, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(c.Space, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(c.Owner[:], false)
}

func (c *ProtectedAccountConfig) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Lamports, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if c.Space, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	c.Owner, err = readPublicKey(dec)
	return err
}

// AccountMeta mirrors solana.AccountMeta but with the protocol's 1-byte
// boolean encoding pinned down.
type AccountMeta struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

const accountMetaSize = solana.PublicKeyLength + 1 + 1

func (a AccountMeta) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.Key[:], false); err != nil {
		return err
	}
	if err := enc.WriteBool(a.IsSigner); err != nil {
		return err
	}
	return enc.WriteBool(a.IsWritable)
}

func (a *AccountMeta) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if a.Key, err = readPublicKey(dec); err != nil {
		return err
	}
	if a.IsSigner, err = dec.ReadBool(); err != nil {
		return err
	}
	a.IsWritable, err = dec.ReadBool()
	return err
}

// ProposedInstruction is a fully generic instruction description: the thing
// a group wants its protected account to execute.
type ProposedInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

func (p ProposedInstruction) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(p.ProgramID[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(p.Accounts)), bin.LE); err != nil {
		return err
	}
	for _, a := range p.Accounts {
		if err := a.MarshalWithEncoder(enc); err != nil {
			return err
		}
	}
	if err := enc.WriteUint32(uint32(len(p.Data)), bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(p.Data, false)
}

func (p *ProposedInstruction) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if p.ProgramID, err = readPublicKey(dec); err != nil {
		return err
	}
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	p.Accounts = make([]AccountMeta, n)
	for i := range p.Accounts {
		if err = p.Accounts[i].UnmarshalWithDecoder(dec); err != nil {
			return err
		}
	}
	dataLen, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	p.Data, err = dec.ReadNBytes(int(dataLen))
	return err
}

// Size returns the exact canonical byte length.
func (p ProposedInstruction) Size() uint64 {
	return solana.PublicKeyLength +
		4 + uint64(len(p.Accounts))*accountMetaSize +
		4 + uint64(len(p.Data))
}

// ProposalConfig is a proposal's identity: its canonical bytes are hashed to
// derive the proposal address, so byte-identical (group, instruction) pairs
// collide to the same account. That collision is the protocol's dedup rule.
type ProposalConfig struct {
	Group       solana.PublicKey
	Instruction ProposedInstruction
}

func (c ProposalConfig) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(c.Group[:], false); err != nil {
		return err
	}
	return c.Instruction.MarshalWithEncoder(enc)
}

func (c *ProposalConfig) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.Group, err = readPublicKey(dec); err != nil {
		return err
	}
	return c.Instruction.UnmarshalWithDecoder(dec)
}

func (c ProposalConfig) Size() uint64 {
	return solana.PublicKeyLength + c.Instruction.Size()
}

// ProposalState is the on-chain approval tally. The client only ever reads
// it.
type ProposalState struct {
	Members       uint64
	CurrentWeight uint32
}

const proposalStateSize = 8 + 4

func (s ProposalState) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint64(s.Members, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint32(s.CurrentWeight, bin.LE)
}

func (s *ProposalState) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if s.Members, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	s.CurrentWeight, err = dec.ReadUint32(bin.LE)
	return err
}

// ProposalData is the full proposal account payload.
type ProposalData struct {
	Config ProposalConfig
	State  ProposalState
}

func (p ProposalData) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := p.Config.MarshalWithEncoder(enc); err != nil {
		return err
	}
	return p.State.MarshalWithEncoder(enc)
}

func (p *ProposalData) UnmarshalWithDecoder(dec *bin.Decoder) error {
	if err := p.Config.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	return p.State.UnmarshalWithDecoder(dec)
}

func (p ProposalData) Size() uint64 {
	return p.Config.Size() + proposalStateSize
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	b, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b), nil
}

// Encode serializes any schema value into its canonical bytes.
func Encode(v interface {
	MarshalWithEncoder(*bin.Encoder) error
}) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := v.MarshalWithEncoder(enc); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}
