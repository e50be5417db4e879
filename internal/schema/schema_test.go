package schema

import (
	"bytes"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
}

func newDecoder(data []byte) *bin.Decoder {
	return bin.NewBorshDecoder(data)
}

func decodeGroup(t *testing.T, data []byte) GroupData {
	t.Helper()
	var g GroupData
	require.NoError(t, g.UnmarshalWithDecoder(newDecoder(data)))
	return g
}

func TestGroupDataRoundTrip(t *testing.T) {
	cases := map[string]GroupData{
		"empty": {Members: []GroupMember{}, Threshold: 0},
		"single": {
			Members:   []GroupMember{{Key: key(1), Weight: 1}},
			Threshold: 1,
		},
		"zero weight member": {
			Members:   []GroupMember{{Key: key(1), Weight: 0}, {Key: key(2), Weight: 3}},
			Threshold: 2,
		},
	}
	for name, group := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(group)
			require.NoError(t, err)
			require.Equal(t, group.Size(), uint64(len(data)))
			assert.Equal(t, group, decodeGroup(t, data))
		})
	}
}

func TestGroupDataLayout(t *testing.T) {
	group := GroupData{
		Members:   []GroupMember{{Key: key(7), Weight: 5}},
		Threshold: 9,
	}
	data, err := Encode(group)
	require.NoError(t, err)

	require.Len(t, data, 44)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, key(7).Bytes(), []byte(data[4:36]))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(data[36:40]))
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(data[40:44]))
}

func TestAccountMetaBooleansAreSingleBytes(t *testing.T) {
	meta := AccountMeta{Key: key(3), IsSigner: true, IsWritable: false}
	data, err := Encode(meta)
	require.NoError(t, err)

	require.Len(t, data, 34)
	assert.Equal(t, byte(1), data[32])
	assert.Equal(t, byte(0), data[33])

	var out AccountMeta
	require.NoError(t, out.UnmarshalWithDecoder(newDecoder(data)))
	assert.Equal(t, meta, out)
}

func TestProposedInstructionRoundTrip(t *testing.T) {
	inst := ProposedInstruction{
		ProgramID: key(9),
		Accounts: []AccountMeta{
			{Key: key(1), IsSigner: true, IsWritable: true},
			{Key: key(2), IsSigner: false, IsWritable: true},
		},
		Data: []byte{2, 0, 0, 0, 64, 66, 15, 0, 0, 0, 0, 0},
	}
	data, err := Encode(inst)
	require.NoError(t, err)
	require.Equal(t, inst.Size(), uint64(len(data)))

	var out ProposedInstruction
	require.NoError(t, out.UnmarshalWithDecoder(newDecoder(data)))
	assert.Equal(t, inst, out)
}

func TestProposedInstructionEmptyData(t *testing.T) {
	inst := ProposedInstruction{ProgramID: key(9), Accounts: []AccountMeta{}, Data: []byte{}}
	data, err := Encode(inst)
	require.NoError(t, err)
	require.Equal(t, uint64(40), uint64(len(data)))

	var out ProposedInstruction
	require.NoError(t, out.UnmarshalWithDecoder(newDecoder(data)))
	assert.Equal(t, inst, out)
}

func TestProposalDataRoundTrip(t *testing.T) {
	pd := ProposalData{
		Config: ProposalConfig{
			Group: key(4),
			Instruction: ProposedInstruction{
				ProgramID: key(5),
				Accounts:  []AccountMeta{{Key: key(6), IsSigner: false, IsWritable: true}},
				Data:      []byte{1, 2, 3},
			},
		},
		State: ProposalState{Members: 2, CurrentWeight: 1},
	}
	data, err := Encode(pd)
	require.NoError(t, err)
	require.Equal(t, pd.Size(), uint64(len(data)))

	var out ProposalData
	require.NoError(t, out.UnmarshalWithDecoder(newDecoder(data)))
	assert.Equal(t, pd, out)
}

func TestEnvelopeTags(t *testing.T) {
	initData, err := EncodeEnvelope(NewInitEnvelope(InitArgs{
		Group: GroupData{Members: []GroupMember{}, Threshold: 1},
	}))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(initData[:4]))

	proposeData, err := EncodeEnvelope(NewProposeEnvelope(ProposeArgs{
		Instruction: ProposedInstruction{ProgramID: key(1), Accounts: []AccountMeta{}, Data: []byte{}},
		Lamports:    7,
	}))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(proposeData[:4]))

	approveData, err := EncodeEnvelope(NewApproveEnvelope())
	require.NoError(t, err)
	require.Len(t, approveData, 4)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(approveData[:4]))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	envelopes := map[string]Envelope{
		"init without protected": NewInitEnvelope(InitArgs{
			Group:          GroupData{Members: []GroupMember{{Key: key(1), Weight: 1}}, Threshold: 1},
			InitialBalance: 500,
		}),
		"init with protected": NewInitEnvelope(InitArgs{
			Group:          GroupData{Members: []GroupMember{{Key: key(1), Weight: 1}}, Threshold: 1},
			InitialBalance: 500,
			Protected: &ProtectedAccountConfig{
				Lamports: 1000,
				Space:    165,
				Owner:    key(8),
			},
		}),
		"propose": NewProposeEnvelope(ProposeArgs{
			Instruction: ProposedInstruction{
				ProgramID: key(2),
				Accounts:  []AccountMeta{{Key: key(3), IsSigner: true, IsWritable: false}},
				Data:      []byte{42},
			},
			Lamports: 12345,
		}),
		"approve": NewApproveEnvelope(),
	}
	for name, env := range envelopes {
		t.Run(name, func(t *testing.T) {
			data, err := EncodeEnvelope(env)
			require.NoError(t, err)
			out, err := DecodeEnvelope(data)
			require.NoError(t, err)
			assert.Equal(t, env, out)
		})
	}
}

func TestEnvelopeOptionFlagIsSingleByte(t *testing.T) {
	group := GroupData{Members: []GroupMember{}, Threshold: 1}
	absent, err := EncodeEnvelope(NewInitEnvelope(InitArgs{Group: group, InitialBalance: 1}))
	require.NoError(t, err)
	present, err := EncodeEnvelope(NewInitEnvelope(InitArgs{
		Group:          group,
		InitialBalance: 1,
		Protected:      &ProtectedAccountConfig{Owner: key(1)},
	}))
	require.NoError(t, err)

	// tag(4) + group(8) + balance(8) + flag(1) [+ config(48)]
	require.Len(t, absent, 21)
	require.Len(t, present, 69)
	assert.Equal(t, byte(0), absent[20])
	assert.Equal(t, byte(1), present[20])
}

func TestEnvelopeRejectsUnknownTag(t *testing.T) {
	bad := []byte{3, 0, 0, 0}
	_, err := DecodeEnvelope(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown envelope tag")
}

func TestEnvelopeRejectsEmptyVariant(t *testing.T) {
	_, err := EncodeEnvelope(Envelope{})
	require.ErrorIs(t, err, errNoActiveVariant)
}

func TestDecodeRejectsTruncatedBuffers(t *testing.T) {
	group := GroupData{
		Members:   []GroupMember{{Key: key(1), Weight: 1}, {Key: key(2), Weight: 2}},
		Threshold: 2,
	}
	data, err := Encode(group)
	require.NoError(t, err)

	for cut := 1; cut < len(data); cut += 7 {
		var out GroupData
		err := out.UnmarshalWithDecoder(newDecoder(data[:len(data)-cut]))
		assert.Error(t, err, "truncated by %d bytes", cut)
	}
}
