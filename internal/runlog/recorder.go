// Package runlog persists one JSON record per transform run.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"jobetl/internal/normalizer"
)

// Status of a run or of one entity within it.
type Status string

// Run statuses.
const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Recorder errors.
var (
	ErrNilRecorder = errors.New("runlog: recorder is nil")
	ErrNoDir       = errors.New("runlog: directory is required")
	ErrNilRecord   = errors.New("runlog: record is nil")
)

// EntityRecord is the outcome of one entity pipeline.
type EntityRecord struct {
	Entity     string           `json:"entity"`
	Status     Status           `json:"status"`
	Output     string           `json:"output,omitempty"`
	DurationMS int64            `json:"duration_ms"`
	Stats      normalizer.Stats `json:"stats"`
	Error      string           `json:"error,omitempty"`
}

// Record describes one transform run.
type Record struct {
	ID          string         `json:"id"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
	Status      Status         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Entities    []EntityRecord `json:"entities,omitempty"`
}

// Recorder writes run records into a directory.
type Recorder struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// NewRecorder creates a recorder for dir.
func NewRecorder(dir string) *Recorder {
	return &Recorder{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Start writes a record in the started state.
func (r *Recorder) Start() (*Record, error) {
	if r == nil {
		return nil, ErrNilRecorder
	}

	if r.dir == "" {
		return nil, ErrNoDir
	}

	record := &Record{
		ID:        r.newID(),
		StartedAt: r.now().UTC(),
		Status:    StatusStarted,
	}

	if err := r.write(record); err != nil {
		return nil, err
	}

	return record, nil
}

// Finish stores the entity outcomes and the final status. A run whose
// entities partly failed is marked partial.
func (r *Recorder) Finish(record *Record, entities []EntityRecord, runErr error) error {
	if r == nil {
		return ErrNilRecorder
	}

	if record == nil {
		return ErrNilRecord
	}

	record.CompletedAt = r.now().UTC()
	record.Entities = entities
	record.Status = overallStatus(entities, runErr)
	record.Error = ""

	if runErr != nil {
		record.Error = runErr.Error()
	}

	return r.write(record)
}

// Path returns the file a record is stored in.
func (r *Recorder) Path(record *Record) string {
	return filepath.Join(r.dir, fmt.Sprintf("run-%s.json", record.ID))
}

// Load reads a stored record.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse run record: %w", err)
	}

	return &record, nil
}

func overallStatus(entities []EntityRecord, runErr error) Status {
	if runErr == nil {
		return StatusCompleted
	}

	for _, e := range entities {
		if e.Status == StatusCompleted {
			return StatusPartial
		}
	}

	return StatusFailed
}

func (r *Recorder) write(record *Record) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create runs dir: %w", err)
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	if err := os.WriteFile(r.Path(record), append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}

	return nil
}
