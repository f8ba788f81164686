package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cagandemirsamli/personalassistant/logging"
)

// ErrEmptyName is returned when a document name is blank.
var ErrEmptyName = errors.New("document name is empty")

// Collection is a named record collection: record key to record.
type Collection map[string]any

// LegacyKeyFunc derives a record key for element idx of a legacy list document.
type LegacyKeyFunc func(idx int, record map[string]any) string

// Options configures a Store.
type Options struct {
	// LegacyKeys maps a document name to the key function used when the
	// document is still stored as a bare JSON list.
	LegacyKeys map[string]LegacyKeyFunc
	Logger     logging.Logger
}

// Store reads and writes whole JSON documents under a base directory.
// Every logical mutation is a Load followed by a Save of the full document;
// there is no locking, the last writer wins.
type Store struct {
	baseDir    string
	legacyKeys map[string]LegacyKeyFunc
	logger     logging.Logger
}

// New creates a Store rooted at baseDir.
func New(baseDir string, optFns ...func(o *Options)) *Store {
	opts := Options{
		LegacyKeys: map[string]LegacyKeyFunc{},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{baseDir: baseDir, legacyKeys: opts.LegacyKeys, logger: opts.Logger}
}

// BaseDir returns the directory documents live in.
func (s *Store) BaseDir() string { return s.baseDir }

// Path returns the file backing the named document.
func (s *Store) Path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Load reads the named document. A missing, empty or malformed file yields
// an empty collection. Legacy list documents are re-keyed in memory and
// upgraded on the next Save.
func (s *Store) Load(name string) Collection {
	if strings.TrimSpace(name) == "" {
		return Collection{}
	}

	path := s.Path(name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("store.load.read_failed", "document", name, "error", err.Error())
		}
		return Collection{}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Collection{}
	}

	if raw[0] == '[' {
		var list []any
		if err := json.Unmarshal(raw, &list); err != nil {
			s.logger.Warn("store.load.malformed", "document", name, "error", err.Error())
			return Collection{}
		}
		s.logger.Info("store.load.legacy_list", "document", name, "records", len(list))
		return s.upgrade(name, list)
	}

	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		s.logger.Warn("store.load.malformed", "document", name, "error", err.Error())
		return Collection{}
	}
	if c == nil {
		return Collection{}
	}
	return c
}

func (s *Store) upgrade(name string, list []any) Collection {
	keyFn, ok := s.legacyKeys[name]
	if !ok {
		keyFn = func(idx int, _ map[string]any) string { return fmt.Sprintf("%s_%d", name, idx) }
	}

	c := make(Collection, len(list))
	for i, elem := range list {
		record, ok := elem.(map[string]any)
		if !ok {
			record = map[string]any{"value": elem}
		}
		c[keyFn(i, record)] = record
	}
	return c
}

// Save overwrites the named document with c, indented by four spaces.
func (s *Store) Save(name string, c Collection) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if c == nil {
		c = Collection{}
	}

	raw, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil { //nolint:gosec // user data, not secrets
		return fmt.Errorf("write %s: %w", name, err)
	}

	s.logger.Debug("store.save", "document", name, "records", len(c))
	return nil
}

// LoadInto loads the named document and decodes it into v, which should be
// a pointer to a map or struct. A document that does not fit v leaves v
// at its zero value.
func (s *Store) LoadInto(name string, v any) {
	c := s.Load(name)
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("store.load.shape_mismatch", "document", name, "error", err.Error())
	}
}

// SaveFrom encodes v as a collection and saves it under name.
func (s *Store) SaveFrom(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("%s is not an object: %w", name, err)
	}
	return s.Save(name, c)
}
