// Package vanity finds keypairs whose public address matches a prefix or
// suffix pattern by delegating to the solana-keygen grinder binary.
package vanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// MaxPatternLength caps vanity patterns: search cost grows exponentially
// with pattern length.
const MaxPatternLength = 5

// base58Alphabet excludes the visually ambiguous characters 0, O, I and l.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	// ErrGrinderNotFound means the key-search executable is not installed.
	ErrGrinderNotFound = errors.New("grinder executable not found")

	// ErrGrindTimeout means the search exceeded its wall-clock budget.
	ErrGrindTimeout = errors.New("vanity grind timed out")
)

// Options adjusts a single grind run.
type Options struct {
	IgnoreCase bool
}

// Grinder wraps the external key-search executable with a hard timeout and
// guaranteed scratch-directory cleanup.
type Grinder struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGrinder creates a grinder using the given executable and timeout.
func NewGrinder(binary string, timeout time.Duration, logger *zap.Logger) *Grinder {
	return &Grinder{
		binary:  binary,
		timeout: timeout,
		logger:  logger.Named("vanity"),
	}
}

// ValidatePattern checks prefix and suffix against the base58 alphabet and
// the length cap. Called before any subprocess is spawned.
func ValidatePattern(prefix, suffix string) error {
	for _, pair := range []struct {
		label string
		value string
	}{
		{"prefix", prefix},
		{"suffix", suffix},
	} {
		if pair.value == "" {
			continue
		}
		for _, c := range pair.value {
			if !strings.ContainsRune(base58Alphabet, c) {
				return fmt.Errorf("%s %q contains invalid characters: only base58 characters are allowed (no 0, O, I, or l)", pair.label, pair.value)
			}
		}
		if len(pair.value) > MaxPatternLength {
			return fmt.Errorf("%s is too long (%d chars): maximum is %d characters", pair.label, len(pair.value), MaxPatternLength)
		}
	}
	if prefix == "" && suffix == "" {
		return errors.New("at least one of prefix or suffix is required")
	}
	return nil
}

// Grind searches for a keypair whose address matches the pattern. The
// external process is killed when the timeout elapses, and the scratch
// directory is removed on every exit path.
func (g *Grinder) Grind(ctx context.Context, prefix, suffix string, opts Options) (solana.PrivateKey, error) {
	if err := ValidatePattern(prefix, suffix); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "smt-grind-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	args := []string{"grind"}
	switch {
	case prefix != "" && suffix != "":
		args = append(args, "--starts-and-ends-with", fmt.Sprintf("%s:%s:1", prefix, suffix))
	case prefix != "":
		args = append(args, "--starts-with", prefix+":1")
	default:
		args = append(args, "--ends-with", suffix+":1")
	}
	if opts.IgnoreCase {
		args = append(args, "--ignore-case")
	}

	grindCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Info("Starting vanity grind",
		zap.String("prefix", prefix),
		zap.String("suffix", suffix),
		zap.Duration("timeout", g.timeout))

	cmd := exec.CommandContext(grindCtx, g.binary, args...)
	cmd.Dir = tempDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(grindCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: try a shorter prefix/suffix", ErrGrindTimeout, g.timeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is not installed; install the Solana CLI: https://docs.solanalabs.com/cli/install", ErrGrinderNotFound, g.binary)
		}
		return nil, fmt.Errorf("vanity grind failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	key, err := readKeypairFile(tempDir)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Vanity grind complete", zap.String("address", key.PublicKey().String()))
	return key, nil
}

// readKeypairFile parses the single keypair JSON file the grinder wrote to
// the scratch directory.
func readKeypairFile(dir string) (solana.PrivateKey, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scratch directory: %w", err)
	}

	var keypairPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			keypairPath = filepath.Join(dir, entry.Name())
			break
		}
	}
	if keypairPath == "" {
		return nil, errors.New("vanity grind produced no keypair file")
	}

	raw, err := os.ReadFile(keypairPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}

	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to parse keypair file: %w", err)
	}
	if len(values) != 64 {
		return nil, fmt.Errorf("invalid keypair length: expected 64 bytes, got %d", len(values))
	}

	keyBytes := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("invalid keypair byte at index %d: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}

	return solana.PrivateKey(keyBytes), nil
}
