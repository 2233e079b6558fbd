package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/properties"
)

// Entry wraps a stored document with enough metadata to detect torn or
// hand-edited files.
type Entry[T any] struct {
	Data      T         `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
	Checksum  string    `json:"checksum"`
}

// FileStore persists JSON documents under ROOT_PATH/data/<subDir>, one file
// per key. Writes go through a temp file and a rename so a concurrent reader
// never sees a partial document.
type FileStore[T any] struct {
	dir string
}

func NewFileStore[T any](subDir string) *FileStore[T] {
	return &FileStore[T]{
		dir: filepath.Join(properties.RootPath(), "data", subDir),
	}
}

// Key hashes params into a stable filename-safe identifier.
func Key(params ...interface{}) string {
	var keyData string
	for _, param := range params {
		keyData += fmt.Sprintf("%v_", param)
	}
	h := sha1.Sum([]byte(keyData))
	return hex.EncodeToString(h[:])
}

// Path returns where a key is stored on disk.
func (fs *FileStore[T]) Path(key string) string {
	return filepath.Join(fs.dir, key+".json")
}

// Load returns the stored document, or false when it is missing, unreadable
// or fails its checksum.
func (fs *FileStore[T]) Load(key string) (T, bool) {
	var zero T

	data, err := os.ReadFile(fs.Path(key))
	if err != nil {
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return zero, false
	}
	if entry.Checksum != checksum(entry.Data) {
		return zero, false
	}
	return entry.Data, true
}

// Save writes the document atomically.
func (fs *FileStore[T]) Save(key string, data T) error {
	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	entry := Entry[T]{
		Data:      data,
		UpdatedAt: time.Now(),
		Checksum:  checksum(data),
	}
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal store entry: %w", err)
	}

	path := fs.Path(key)
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp store file: %w", err)
	}
	return nil
}

func checksum[T any](data T) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:])
}
