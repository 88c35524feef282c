package transaction

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/shipmytoken/smt/internal/blockchain/solana/programs/computebudget"
)

// BlockhashSource supplies a fresh recent blockhash at build time.
type BlockhashSource interface {
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
}

// Builder assembles and signs one transaction. The priority-fee instruction
// is prepended to the instruction list and the blockhash is fetched when
// Build is called, not earlier.
type Builder struct {
	instructions []solana.Instruction
	signers      []solana.PrivateKey
	priorityFee  uint64
}

// New creates a transaction builder with the given priority fee in
// microlamports per compute unit. Zero disables the fee instruction.
func New(priorityFee uint64) *Builder {
	return &Builder{priorityFee: priorityFee}
}

// AddInstruction appends an instruction to the transaction.
func (b *Builder) AddInstruction(instruction solana.Instruction) *Builder {
	b.instructions = append(b.instructions, instruction)
	return b
}

// AddSigner adds a signer. The first signer is the fee payer.
func (b *Builder) AddSigner(signer solana.PrivateKey) *Builder {
	b.signers = append(b.signers, signer)
	return b
}

// Build fetches a fresh blockhash, assembles the transaction and signs it
// with every registered signer.
func (b *Builder) Build(ctx context.Context, source BlockhashSource) (*solana.Transaction, error) {
	if len(b.signers) == 0 {
		return nil, fmt.Errorf("no signers provided")
	}
	if len(b.instructions) == 0 {
		return nil, fmt.Errorf("no instructions provided")
	}

	blockhash, err := source.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(b.instructions)+1)
	if b.priorityFee > 0 {
		feeIx, err := computebudget.PriorityFeeInstruction(b.priorityFee)
		if err != nil {
			return nil, fmt.Errorf("failed to build priority fee instruction: %w", err)
		}
		instructions = append(instructions, feeIx)
	}
	instructions = append(instructions, b.instructions...)

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(b.signers[0].PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, signer := range b.signers {
			if signer.PublicKey().Equals(key) {
				privateCopy := signer
				return &privateCopy
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return tx, nil
}
