package proposer

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/crazydevlegend/multisig/internal/multisig"
	"github.com/crazydevlegend/multisig/internal/schema"
)

// tokenAccountSpace is the fixed size of an SPL token account.
const tokenAccountSpace = 165

// BPF upgradeable loader instruction indices (u32 little-endian, bincode).
const (
	loaderUpgrade      uint32 = 3
	loaderSetAuthority uint32 = 4
)

// Proposition is a semantic request to be executed by a group's protected
// account. Exactly one variant is set; an empty proposition fails with
// ErrUnsupportedProposition when translated.
type Proposition struct {
	Transfer            *TransferParams
	MintTo              *MintToParams
	CreateTokenAccount  *CreateTokenAccountParams
	SetUpgradeAuthority *SetUpgradeAuthorityParams
	Upgrade             *UpgradeParams
}

// TransferParams moves lamports out of the protected account.
type TransferParams struct {
	To       solana.PublicKey
	Lamports uint64
}

// MintToParams mints tokens with the protected account as mint authority.
type MintToParams struct {
	Mint        solana.PublicKey
	Destination solana.PublicKey
	Amount      uint64
}

// CreateTokenAccountParams creates a seeded token account owned by the
// protected authority and initializes it for Mint.
type CreateTokenAccountParams struct {
	Mint solana.PublicKey
	Seed string
}

// SetUpgradeAuthorityParams hands a program's upgrade authority (currently
// the protected account) to a new authority.
type SetUpgradeAuthorityParams struct {
	Program      solana.PublicKey
	NewAuthority solana.PublicKey
}

// UpgradeParams redeploys a program from a staged buffer, with the protected
// account as upgrade authority.
type UpgradeParams struct {
	Program solana.PublicKey
	Buffer  solana.PublicKey
	Spill   solana.PublicKey
}

// translate expands a proposition into the low-level instructions the
// protected account should execute. rentExempt resolves minimum balances for
// account-creating propositions.
func translate(
	p Proposition,
	protected solana.PublicKey,
	rentExempt func(space uint64) (uint64, error),
) ([]schema.ProposedInstruction, error) {
	switch {
	case p.Transfer != nil:
		ix := system.NewTransferInstruction(
			p.Transfer.Lamports,
			protected,
			p.Transfer.To,
		).Build()
		pi, err := fromSolanaInstruction(ix)
		if err != nil {
			return nil, err
		}
		return []schema.ProposedInstruction{pi}, nil

	case p.MintTo != nil:
		ix := token.NewMintToInstruction(
			p.MintTo.Amount,
			p.MintTo.Mint,
			p.MintTo.Destination,
			protected,
			nil,
		).Build()
		pi, err := fromSolanaInstruction(ix)
		if err != nil {
			return nil, err
		}
		return []schema.ProposedInstruction{pi}, nil

	case p.CreateTokenAccount != nil:
		return translateCreateTokenAccount(*p.CreateTokenAccount, protected, rentExempt)

	case p.SetUpgradeAuthority != nil:
		return translateSetUpgradeAuthority(*p.SetUpgradeAuthority, protected)

	case p.Upgrade != nil:
		return translateUpgrade(*p.Upgrade, protected)

	default:
		return nil, multisig.ErrUnsupportedProposition
	}
}

func translateCreateTokenAccount(
	params CreateTokenAccountParams,
	protected solana.PublicKey,
	rentExempt func(space uint64) (uint64, error),
) ([]schema.ProposedInstruction, error) {
	account, err := solana.CreateWithSeed(protected, params.Seed, solana.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive seeded token account: %w", err)
	}
	lamports, err := rentExempt(tokenAccountSpace)
	if err != nil {
		return nil, err
	}

	create := system.NewCreateAccountWithSeedInstruction(
		protected,
		params.Seed,
		lamports,
		tokenAccountSpace,
		solana.TokenProgramID,
		protected,
		account,
		protected,
	).Build()
	initialize := token.NewInitializeAccountInstruction(
		account,
		params.Mint,
		protected,
		solana.SysVarRentPubkey,
	).Build()

	out := make([]schema.ProposedInstruction, 0, 2)
	for _, ix := range []solana.Instruction{create, initialize} {
		pi, err := fromSolanaInstruction(ix)
		if err != nil {
			return nil, err
		}
		out = append(out, pi)
	}
	return out, nil
}

func translateSetUpgradeAuthority(
	params SetUpgradeAuthorityParams,
	protected solana.PublicKey,
) ([]schema.ProposedInstruction, error) {
	programData, err := programDataAddress(params.Program)
	if err != nil {
		return nil, err
	}
	data, err := encodeLoaderIndex(loaderSetAuthority)
	if err != nil {
		return nil, err
	}
	return []schema.ProposedInstruction{{
		ProgramID: solana.BPFLoaderUpgradeableProgramID,
		Accounts: []schema.AccountMeta{
			{Key: programData, IsSigner: false, IsWritable: true},
			{Key: protected, IsSigner: true, IsWritable: false},
			{Key: params.NewAuthority, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}}, nil
}

func translateUpgrade(
	params UpgradeParams,
	protected solana.PublicKey,
) ([]schema.ProposedInstruction, error) {
	programData, err := programDataAddress(params.Program)
	if err != nil {
		return nil, err
	}
	data, err := encodeLoaderIndex(loaderUpgrade)
	if err != nil {
		return nil, err
	}
	return []schema.ProposedInstruction{{
		ProgramID: solana.BPFLoaderUpgradeableProgramID,
		Accounts: []schema.AccountMeta{
			{Key: programData, IsSigner: false, IsWritable: true},
			{Key: params.Program, IsSigner: false, IsWritable: true},
			{Key: params.Buffer, IsSigner: false, IsWritable: true},
			{Key: params.Spill, IsSigner: false, IsWritable: true},
			{Key: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
			{Key: solana.SysVarClockPubkey, IsSigner: false, IsWritable: false},
			{Key: protected, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}}, nil
}

// programDataAddress derives the loader's program-data account for a
// deployed upgradeable program.
func programDataAddress(program solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{program[:]},
		solana.BPFLoaderUpgradeableProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive program data address: %w", err)
	}
	return addr, nil
}

func encodeLoaderIndex(index uint32) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint32(index, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fromSolanaInstruction flattens a built instruction into the generic shape
// proposals are stored in. The protected account usually appears as a signer
// here; the protocol client rewrites that flag when it assembles propose and
// approve instructions.
func fromSolanaInstruction(ix solana.Instruction) (schema.ProposedInstruction, error) {
	data, err := ix.Data()
	if err != nil {
		return schema.ProposedInstruction{}, fmt.Errorf("serialize proposed instruction: %w", err)
	}
	metas := ix.Accounts()
	accounts := make([]schema.AccountMeta, len(metas))
	for i, m := range metas {
		accounts[i] = schema.AccountMeta{
			Key:        m.PublicKey,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
		}
	}
	return schema.ProposedInstruction{
		ProgramID: ix.ProgramID(),
		Accounts:  accounts,
		Data:      data,
	}, nil
}
