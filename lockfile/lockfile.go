// Package lockfile implements rire.lock — a lock file tracking MD5
// checksums of source strings per target language. This enables incremental
// translation: only new or changed messages are sent to the AI provider,
// saving tokens and time.
//
// The lock file is stored alongside .rire.yaml as rire.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jannikbertram/Rire/messages"
)

// LockFileName is the default lock file name.
const LockFileName = "rire.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the rire.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // lang -> key -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}
	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Checksum queries and updates
// ---------------------------------------------------------------------------

// Checksum returns the MD5 hex digest of a source string.
func Checksum(source string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(source)))
}

// Stale returns the keys of src whose recorded checksum for lang is missing
// or differs from the current source value, in src order. These are the keys
// that need (re)translation.
func (lf *LockFile) Stale(lang string, src *messages.Map) []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	recorded := lf.Checksums[lang]
	var stale []string
	for _, e := range src.Entries() {
		if recorded == nil || recorded[e.Key] != Checksum(e.Value) {
			stale = append(stale, e.Key)
		}
	}
	return stale
}

// Record stores the checksums of the given source entries for lang,
// marking them translated at the current source text.
func (lf *LockFile) Record(lang string, entries []messages.Entry) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[lang] == nil {
		lf.Checksums[lang] = make(map[string]string)
	}
	for _, e := range entries {
		lf.Checksums[lang][e.Key] = Checksum(e.Value)
	}
}

// Prune drops recorded checksums for keys no longer present in src,
// keeping the lock file in step with the source locale.
func (lf *LockFile) Prune(lang string, src *messages.Map) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	recorded := lf.Checksums[lang]
	for key := range recorded {
		if !src.Has(key) {
			delete(recorded, key)
		}
	}
}
