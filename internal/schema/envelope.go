package schema

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Instruction envelope variant tags. The numbering is part of the wire
// format; new variants append, existing values never move.
const (
	TagInit uint32 = iota
	TagPropose
	TagApprove
)

var errNoActiveVariant = errors.New("envelope has no active variant")

// InitArgs creates a group account and its protected authority account.
type InitArgs struct {
	Group          GroupData
	InitialBalance uint64
	Protected      *ProtectedAccountConfig
}

func (a InitArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := a.Group.MarshalWithEncoder(enc); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.InitialBalance, bin.LE); err != nil {
		return err
	}
	if a.Protected == nil {
		return enc.WriteBool(false)
	}
	if err := enc.WriteBool(true); err != nil {
		return err
	}
	return a.Protected.MarshalWithEncoder(enc)
}

func (a *InitArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = a.Group.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	if a.InitialBalance, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	present, err := dec.ReadBool()
	if err != nil {
		return err
	}
	if !present {
		a.Protected = nil
		return nil
	}
	a.Protected = new(ProtectedAccountConfig)
	return a.Protected.UnmarshalWithDecoder(dec)
}

// ProposeArgs stores the instruction to execute and the lamports funding the
// proposal account's rent.
type ProposeArgs struct {
	Instruction ProposedInstruction
	Lamports    uint64
}

func (a ProposeArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := a.Instruction.MarshalWithEncoder(enc); err != nil {
		return err
	}
	return enc.WriteUint64(a.Lamports, bin.LE)
}

func (a *ProposeArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if err = a.Instruction.UnmarshalWithDecoder(dec); err != nil {
		return err
	}
	a.Lamports, err = dec.ReadUint64(bin.LE)
	return err
}

// ApproveArgs is deliberately empty; approval is identified entirely by the
// accounts on the instruction.
type ApproveArgs struct{}

func (ApproveArgs) MarshalWithEncoder(*bin.Encoder) error { return nil }

func (*ApproveArgs) UnmarshalWithDecoder(*bin.Decoder) error { return nil }

// Envelope is the tagged union carried in every instruction sent to the
// program: a u32 little-endian variant tag followed by the variant body.
// Exactly one of the variant pointers is non-nil.
type Envelope struct {
	Init    *InitArgs
	Propose *ProposeArgs
	Approve *ApproveArgs
}

func NewInitEnvelope(args InitArgs) Envelope { return Envelope{Init: &args} }

func NewProposeEnvelope(args ProposeArgs) Envelope { return Envelope{Propose: &args} }

func NewApproveEnvelope() Envelope { return Envelope{Approve: &ApproveArgs{}} }

func (e Envelope) MarshalWithEncoder(enc *bin.Encoder) error {
	switch {
	case e.Init != nil:
		if err := enc.WriteUint32(TagInit, bin.LE); err != nil {
			return err
		}
		return e.Init.MarshalWithEncoder(enc)
	case e.Propose != nil:
		if err := enc.WriteUint32(TagPropose, bin.LE); err != nil {
			return err
		}
		return e.Propose.MarshalWithEncoder(enc)
	case e.Approve != nil:
		if err := enc.WriteUint32(TagApprove, bin.LE); err != nil {
			return err
		}
		return e.Approve.MarshalWithEncoder(enc)
	default:
		return errNoActiveVariant
	}
}

func (e *Envelope) UnmarshalWithDecoder(dec *bin.Decoder) error {
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	*e = Envelope{}
	switch tag {
	case TagInit:
		e.Init = new(InitArgs)
		return e.Init.UnmarshalWithDecoder(dec)
	case TagPropose:
		e.Propose = new(ProposeArgs)
		return e.Propose.UnmarshalWithDecoder(dec)
	case TagApprove:
		e.Approve = new(ApproveArgs)
		return e.Approve.UnmarshalWithDecoder(dec)
	default:
		return fmt.Errorf("unknown envelope tag %d", tag)
	}
}

// DecodeEnvelope parses a full instruction payload.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	dec := bin.NewBorshDecoder(data)
	if err := e.UnmarshalWithDecoder(dec); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}

// EncodeEnvelope is a convenience over Encode for the one value that is
// never hashed, only transmitted.
func EncodeEnvelope(e Envelope) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := e.MarshalWithEncoder(enc); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return buf.Bytes(), nil
}
