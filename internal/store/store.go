package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	configFile = "config.json"
	tokensFile = "tokens.json"

	dirMode  = 0o700
	fileMode = 0o600
)

// Store owns the two on-disk documents: the config map and the token ledger.
// No other component opens these files directly.
//
// All writes go through an atomic temp-file-and-rename protocol, so the
// target path holds either the previous version or the new one, never a
// partial write. Concurrent invocations against the same directory are not
// supported and may race.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates a store rooted at dir. The directory is created lazily on
// first write.
func New(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger.Named("store")}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// ReadConfig loads the config document. A missing file is empty state, not
// an error.
func (s *Store) ReadConfig() (*Config, error) {
	cfg := &Config{}
	if err := s.readJSON(configFile, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig persists the config document atomically.
func (s *Store) WriteConfig(cfg *Config) error {
	return s.writeJSON(configFile, cfg)
}

// ReadHistory loads the token ledger. A missing file yields an empty ledger.
func (s *Store) ReadHistory() (*History, error) {
	h := &History{}
	if err := s.readJSON(tokensFile, h); err != nil {
		return nil, err
	}
	if h.Tokens == nil {
		h.Tokens = []TokenRecord{}
	}
	return h, nil
}

// WriteHistory persists the token ledger atomically.
func (s *Store) WriteHistory(h *History) error {
	return s.writeJSON(tokensFile, h)
}

// Key resolves a named secret: the process environment wins, then the
// stored config.
func (s *Store) Key(name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	cfg, err := s.ReadConfig()
	if err != nil {
		return "", err
	}
	if name == "SOLANA_PRIVATE_KEY" && cfg.PrivateKey != "" {
		return cfg.PrivateKey, nil
	}
	return cfg.Extra[name], nil
}

func (s *Store) readJSON(name string, dst interface{}) error {
	path := filepath.Join(s.dir, name)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}

	// Loose permissions are corrected, never silently ignored.
	if info.Mode().Perm()&0o077 != 0 {
		s.logger.Warn("Insecure file permissions, tightening to owner-only",
			zap.String("file", path),
			zap.String("mode", info.Mode().Perm().String()))
		if err := os.Chmod(path, fileMode); err != nil {
			return fmt.Errorf("failed to tighten permissions on %s: %w", name, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, src interface{}) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return s.writeFileAtomic(filepath.Join(s.dir, name), data)
}

// writeFileAtomic writes data to a randomly suffixed temp file created with
// exclusive-create semantics, then renames it over path. A collision on the
// temp name fails the write instead of following a planted file.
func (s *Store) writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("failed to generate temp suffix: %w", err)
	}
	tmpPath := path + "." + hex.EncodeToString(suffix) + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := f.Chmod(fileMode); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
