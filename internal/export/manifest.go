package export

import (
	"fmt"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/cache"
	"github.com/croplapse/croplapse-export-poc/internal/ee"
	"github.com/croplapse/croplapse-export-poc/internal/utils"
)

// TaskRecord is the manifest entry for one submitted export.
type TaskRecord struct {
	Name        string    `json:"name"`
	Operation   string    `json:"operation"`
	State       string    `json:"state"`
	Dataset     string    `json:"dataset"`
	Bands       []string  `json:"bands"`
	LocationID  string    `json:"location_id"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Folder      string    `json:"folder"`
	OutputPath  string    `json:"output_path"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Error       string    `json:"error,omitempty"`
}

// Finished reports whether the record reached a terminal state.
func (r TaskRecord) Finished() bool {
	switch r.State {
	case ee.StateSucceeded, ee.StateFailed, ee.StateCancelled:
		return true
	}
	return false
}

// Manifest is the local bookkeeping for one export folder: every submitted
// task and its last known state, persisted between runs under
// ROOT_PATH/data/tasks.
type Manifest struct {
	Folder  string
	Records map[string]TaskRecord

	store *cache.FileStore[map[string]TaskRecord]
}

// LoadManifest reads the manifest for folder, starting an empty one when
// none exists yet.
func LoadManifest(folder string) *Manifest {
	store := cache.NewFileStore[map[string]TaskRecord]("tasks")
	records, ok := store.Load(folder)
	if !ok {
		records = map[string]TaskRecord{}
	}
	return &Manifest{Folder: folder, Records: records, store: store}
}

// Upsert replaces the record stored under its name.
func (m *Manifest) Upsert(rec TaskRecord) {
	m.Records[rec.Name] = rec
}

// Save persists the manifest atomically.
func (m *Manifest) Save() error {
	if err := m.store.Save(m.Folder, m.Records); err != nil {
		return fmt.Errorf("failed to save manifest for %s: %w", m.Folder, err)
	}
	return nil
}

// Pending lists records not yet in a terminal state, in stable name order.
func (m *Manifest) Pending() []TaskRecord {
	var pending []TaskRecord
	for _, name := range utils.SortedKeys(m.Records) {
		if rec := m.Records[name]; !rec.Finished() {
			pending = append(pending, rec)
		}
	}
	return pending
}

// Counts tallies records by state.
func (m *Manifest) Counts() map[string]int {
	counts := make(map[string]int)
	for _, rec := range m.Records {
		counts[rec.State]++
	}
	return counts
}
