// Package metadata writes and verifies checksum sidecars for generated files.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// SidecarExt is appended to a data file name to form its sidecar path.
	SidecarExt = ".meta"
	// Version is written into every sidecar.
	Version = "1"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
	ErrRowsMismatch    = errors.New("row count mismatch")
)

// Metadata describes one generated data file.
type Metadata struct {
	LastModify time.Time
	Version    string
	Entity     string
	Hash       string
	Rows       int
	Validation bool
}

// CalculateHash computes the SHA-256 hash of data.
func CalculateHash(data []byte) string {
	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:])
}

// New describes data holding rows records of entity.
func New(data []byte, entity string, rows int, validated bool) *Metadata {
	return &Metadata{
		LastModify: time.Now().UTC().Truncate(time.Second),
		Version:    Version,
		Entity:     entity,
		Hash:       CalculateHash(data),
		Rows:       rows,
		Validation: validated,
	}
}

// Encode renders the sidecar as one KEY: VALUE line per field.
func (m *Metadata) Encode() string {
	valStr := "FALSE"
	if m.Validation {
		valStr = "TRUE"
	}

	return fmt.Sprintf("VERSION: %s\nENTITY: %s\nVALIDATION: %s\nROWS: %d\nLAST_MODIFY: %s\nHASH: %s\n",
		m.Version, m.Entity, valStr, m.Rows, m.LastModify.UTC().Format(time.RFC3339), m.Hash)
}

// Parse reads KEY: VALUE lines. Blank lines, "#" comments and unknown keys
// are ignored; content without a VERSION line is not a sidecar.
func Parse(content string) (*Metadata, error) {
	meta := &Metadata{}

	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "VALIDATION":
			meta.Validation = strings.EqualFold(val, "TRUE")
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "HASH":
			meta.Hash = val
		case "VERSION":
			meta.Version = val
		case "ENTITY":
			meta.Entity = val
		case "ROWS":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Rows = n
			}
		}
	}

	if meta.Version == "" {
		return nil, ErrNoMetadataBlock
	}

	return meta, nil
}

// SidecarPath returns the sidecar location for a data file.
func SidecarPath(dataPath string) string {
	return dataPath + SidecarExt
}

// WriteSidecar stores m next to dataPath.
func WriteSidecar(dataPath string, m *Metadata) error {
	if err := os.WriteFile(SidecarPath(dataPath), []byte(m.Encode()), 0o644); err != nil {
		return fmt.Errorf("failed to write metadata sidecar: %w", err)
	}

	return nil
}

// ReadSidecar loads the sidecar of dataPath.
func ReadSidecar(dataPath string) (*Metadata, error) {
	content, err := os.ReadFile(SidecarPath(dataPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata sidecar: %w", err)
	}

	return Parse(string(content))
}

// Verify checks data against the hash recorded in m.
func Verify(data []byte, m *Metadata) error {
	if m == nil {
		return ErrNoMetadataBlock
	}

	if m.Hash == "" {
		return ErrNoHashFound
	}

	calculated := CalculateHash(data)
	if calculated != m.Hash {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, m.Hash, calculated)
	}

	return nil
}

// VerifyFile reads dataPath and its sidecar and checks the hash.
func VerifyFile(dataPath string) (*Metadata, []byte, error) {
	meta, err := ReadSidecar(dataPath)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", dataPath, err)
	}

	if err := Verify(data, meta); err != nil {
		return meta, nil, fmt.Errorf("%s: %w", dataPath, err)
	}

	return meta, data, nil
}

// CheckRows compares the recorded row count with the number actually read.
func (m *Metadata) CheckRows(rows int) error {
	if m.Rows != rows {
		return fmt.Errorf("%w: sidecar says %d, file has %d", ErrRowsMismatch, m.Rows, rows)
	}

	return nil
}
