package pump

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// CreateParams carries everything the create instruction needs.
type CreateParams struct {
	Mint    solana.PublicKey
	Name    string
	Symbol  string
	URI     string
	Creator solana.PublicKey
	User    solana.PublicKey
}

// BuildCreateInstruction builds the instruction that creates the token and
// its bonding curve.
func BuildCreateInstruction(params CreateParams) (solana.Instruction, error) {
	mintAuthority, err := DeriveMintAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive mint authority: %w", err)
	}
	bondingCurve, err := DeriveBondingCurve(params.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	associatedBondingCurve, _, err := solana.FindAssociatedTokenAddress(bondingCurve, params.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	global, err := DeriveGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to derive global: %w", err)
	}
	metadata, err := DeriveMetadata(params.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata: %w", err)
	}
	eventAuthority, err := DeriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	data := make([]byte, 0, 8+len(params.Name)+len(params.Symbol)+len(params.URI)+12+32)
	data = append(data, CreateDiscriminator...)
	data = appendBorshString(data, params.Name)
	data = appendBorshString(data, params.Symbol)
	data = appendBorshString(data, params.URI)
	data = append(data, params.Creator.Bytes()...)

	// Account order is fixed by the program.
	accounts := []*solana.AccountMeta{
		{PublicKey: params.Mint, IsSigner: true, IsWritable: true},
		{PublicKey: mintAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: global, IsSigner: false, IsWritable: false},
		{PublicKey: MetaplexMetadataProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: metadata, IsSigner: false, IsWritable: true},
		{PublicKey: params.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: AssociatedTokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: eventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// BuyParams carries everything the buy instruction needs.
type BuyParams struct {
	Mint         solana.PublicKey
	User         solana.PublicKey
	UserATA      solana.PublicKey
	FeeRecipient solana.PublicKey
	Amount       uint64 // tokens, raw units
	MaxSolCost   uint64 // lamports
}

// BuildBuyInstruction builds a bonding-curve buy.
func BuildBuyInstruction(params BuyParams) (solana.Instruction, error) {
	global, err := DeriveGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to derive global: %w", err)
	}
	bondingCurve, err := DeriveBondingCurve(params.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	associatedBondingCurve, _, err := solana.FindAssociatedTokenAddress(bondingCurve, params.Mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	eventAuthority, err := DeriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	data := make([]byte, 0, 24)
	data = append(data, BuyDiscriminator...)
	data = binary.LittleEndian.AppendUint64(data, params.Amount)
	data = binary.LittleEndian.AppendUint64(data, params.MaxSolCost)

	accounts := []*solana.AccountMeta{
		{PublicKey: global, IsSigner: false, IsWritable: false},
		{PublicKey: params.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: params.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: bondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: associatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: params.UserATA, IsSigner: false, IsWritable: true},
		{PublicKey: params.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: eventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// BuildCreateFeeConfigInstruction initializes the fee-sharing config for a
// mint. Until this runs, all creator fees accrue to the creator alone.
func BuildCreateFeeConfigInstruction(authority, mint solana.PublicKey) (solana.Instruction, error) {
	config, err := DeriveFeeSharingConfig(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive fee sharing config: %w", err)
	}
	eventAuthority, err := DeriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: authority, IsSigner: true, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: config, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: eventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, accounts, append([]byte{}, CreateFeeConfigDiscriminator...)), nil
}

// BuildUpdateFeeSharesInstruction replaces a mint's fee split. The program
// needs the current shareholder set to locate the prior share record
// accounts, and the new set to create their replacements.
func BuildUpdateFeeSharesInstruction(
	authority, mint solana.PublicKey,
	current []solana.PublicKey,
	next []ShareEntry,
) (solana.Instruction, error) {
	config, err := DeriveFeeSharingConfig(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive fee sharing config: %w", err)
	}
	eventAuthority, err := DeriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	data := make([]byte, 0, 8+2+len(current)*32+len(next)*34)
	data = append(data, UpdateFeeSharesDiscriminator...)
	data = append(data, byte(len(current)))
	for _, addr := range current {
		data = append(data, addr.Bytes()...)
	}
	data = append(data, byte(len(next)))
	for _, entry := range next {
		data = append(data, entry.Address.Bytes()...)
		data = binary.LittleEndian.AppendUint16(data, entry.ShareBps)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: authority, IsSigner: true, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: config, IsSigner: false, IsWritable: true},
	}
	for _, addr := range current {
		record, err := DeriveShareRecord(mint, addr)
		if err != nil {
			return nil, fmt.Errorf("failed to derive share record for %s: %w", addr.String(), err)
		}
		accounts = append(accounts, &solana.AccountMeta{PublicKey: record, IsWritable: true})
	}
	for _, entry := range next {
		record, err := DeriveShareRecord(mint, entry.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to derive share record for %s: %w", entry.Address.String(), err)
		}
		accounts = append(accounts, &solana.AccountMeta{PublicKey: record, IsWritable: true})
	}
	accounts = append(accounts,
		&solana.AccountMeta{PublicKey: solana.SystemProgramID},
		&solana.AccountMeta{PublicKey: eventAuthority},
		&solana.AccountMeta{PublicKey: ProgramID},
	)

	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// BuildDistributeFeesInstruction pays out a mint's accrued creator fees to
// its shareholders according to the on-chain split.
func BuildDistributeFeesInstruction(
	payer, mint, creator solana.PublicKey,
	shareholders []solana.PublicKey,
) (solana.Instruction, error) {
	config, err := DeriveFeeSharingConfig(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive fee sharing config: %w", err)
	}
	vault, err := DeriveCreatorVault(creator)
	if err != nil {
		return nil, fmt.Errorf("failed to derive creator vault: %w", err)
	}
	eventAuthority, err := DeriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: config, IsSigner: false, IsWritable: true},
		{PublicKey: vault, IsSigner: false, IsWritable: true},
	}
	for _, addr := range shareholders {
		record, err := DeriveShareRecord(mint, addr)
		if err != nil {
			return nil, fmt.Errorf("failed to derive share record for %s: %w", addr.String(), err)
		}
		accounts = append(accounts,
			&solana.AccountMeta{PublicKey: record, IsWritable: true},
			&solana.AccountMeta{PublicKey: addr, IsWritable: true},
		)
	}
	accounts = append(accounts,
		&solana.AccountMeta{PublicKey: solana.SystemProgramID},
		&solana.AccountMeta{PublicKey: eventAuthority},
		&solana.AccountMeta{PublicKey: ProgramID},
	)

	return solana.NewInstruction(ProgramID, accounts, append([]byte{}, DistributeFeesDiscriminator...)), nil
}

func appendBorshString(data []byte, s string) []byte {
	data = binary.LittleEndian.AppendUint32(data, uint32(len(s)))
	return append(data, s...)
}
