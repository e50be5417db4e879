package proposer

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazydevlegend/multisig/internal/multisig"
)

func key(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
}

func noRent(space uint64) (uint64, error) {
	return 0, nil
}

func TestTranslateTransfer(t *testing.T) {
	protected := key(0xAA)
	out, err := translate(Proposition{
		Transfer: &TransferParams{To: key(0xBB), Lamports: 1_000_000},
	}, protected, noRent)
	require.NoError(t, err)
	require.Len(t, out, 1)

	inst := out[0]
	assert.Equal(t, solana.SystemProgramID, inst.ProgramID)
	require.Len(t, inst.Accounts, 2)

	// The protected account is named as the (implicit) signer; the protocol
	// client rewrites the flag later.
	assert.Equal(t, protected, inst.Accounts[0].Key)
	assert.True(t, inst.Accounts[0].IsSigner)
	assert.True(t, inst.Accounts[0].IsWritable)
	assert.Equal(t, key(0xBB), inst.Accounts[1].Key)

	// System transfer layout: u32 index 2, then lamports.
	require.Len(t, inst.Data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(inst.Data[0:4]))
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(inst.Data[4:12]))
}

func TestTranslateMintTo(t *testing.T) {
	protected := key(0xAA)
	out, err := translate(Proposition{
		MintTo: &MintToParams{Mint: key(0x01), Destination: key(0x02), Amount: 500},
	}, protected, noRent)
	require.NoError(t, err)
	require.Len(t, out, 1)

	inst := out[0]
	assert.Equal(t, solana.TokenProgramID, inst.ProgramID)

	var authoritySigns bool
	for _, a := range inst.Accounts {
		if a.Key.Equals(protected) && a.IsSigner {
			authoritySigns = true
		}
	}
	assert.True(t, authoritySigns, "protected account must be the signing mint authority")
}

func TestTranslateCreateTokenAccount(t *testing.T) {
	protected := key(0xAA)
	rent := func(space uint64) (uint64, error) {
		assert.Equal(t, uint64(tokenAccountSpace), space)
		return 2_039_280, nil
	}

	out, err := translate(Proposition{
		CreateTokenAccount: &CreateTokenAccountParams{Mint: key(0x01), Seed: "treasury"},
	}, protected, rent)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, solana.SystemProgramID, out[0].ProgramID)
	assert.Equal(t, solana.TokenProgramID, out[1].ProgramID)

	seeded, err := solana.CreateWithSeed(protected, "treasury", solana.TokenProgramID)
	require.NoError(t, err)

	contains := func(inst int) bool {
		for _, a := range out[inst].Accounts {
			if a.Key.Equals(seeded) {
				return true
			}
		}
		return false
	}
	assert.True(t, contains(0), "create must reference the seeded account")
	assert.True(t, contains(1), "initialize must reference the seeded account")
}

func TestTranslateSetUpgradeAuthority(t *testing.T) {
	protected := key(0xAA)
	program := key(0x10)
	out, err := translate(Proposition{
		SetUpgradeAuthority: &SetUpgradeAuthorityParams{Program: program, NewAuthority: key(0x11)},
	}, protected, noRent)
	require.NoError(t, err)
	require.Len(t, out, 1)

	inst := out[0]
	assert.Equal(t, solana.BPFLoaderUpgradeableProgramID, inst.ProgramID)
	require.Len(t, inst.Accounts, 3)

	programData, err := programDataAddress(program)
	require.NoError(t, err)
	assert.Equal(t, programData, inst.Accounts[0].Key)
	assert.True(t, inst.Accounts[0].IsWritable)
	assert.Equal(t, protected, inst.Accounts[1].Key)
	assert.True(t, inst.Accounts[1].IsSigner)
	assert.Equal(t, key(0x11), inst.Accounts[2].Key)

	require.Len(t, inst.Data, 4)
	assert.Equal(t, loaderSetAuthority, binary.LittleEndian.Uint32(inst.Data))
}

func TestTranslateUpgrade(t *testing.T) {
	protected := key(0xAA)
	out, err := translate(Proposition{
		Upgrade: &UpgradeParams{Program: key(0x10), Buffer: key(0x20), Spill: key(0x30)},
	}, protected, noRent)
	require.NoError(t, err)
	require.Len(t, out, 1)

	inst := out[0]
	assert.Equal(t, solana.BPFLoaderUpgradeableProgramID, inst.ProgramID)
	require.Len(t, inst.Accounts, 7)
	assert.Equal(t, protected, inst.Accounts[6].Key)
	assert.True(t, inst.Accounts[6].IsSigner)

	require.Len(t, inst.Data, 4)
	assert.Equal(t, loaderUpgrade, binary.LittleEndian.Uint32(inst.Data))
}

func TestTranslateEmptyProposition(t *testing.T) {
	_, err := translate(Proposition{}, key(0xAA), noRent)
	require.ErrorIs(t, err, multisig.ErrUnsupportedProposition)
}
