package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"ipguard/internal/trust/models"
	id "ipguard/pkg/domain"
)

// fileDocument is the on-disk YAML layout.
type fileDocument struct {
	Trusted map[string]fileEntry `yaml:"trusted"`
}

type fileEntry struct {
	Address   string    `yaml:"address"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// File keeps every record in one YAML document. This process is the only
// writer; each mutation rewrites the document through a temp file, fsync and
// rename, and the in-memory view only changes once that succeeded.
type File struct {
	path string

	mu      sync.RWMutex
	records map[id.PrincipalID]models.TrustRecord
	closed  bool
}

// NewFile loads path, creating its parent directory if needed. A missing
// file starts an empty store.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, storeErr(backendFile, "open", errors.New("path is required"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, storeErr(backendFile, "open", err)
	}

	s := &File{path: path, records: make(map[id.PrincipalID]models.TrustRecord)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, storeErr(backendFile, "open", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, storeErr(backendFile, "open", fmt.Errorf("parse %s: %w", path, err))
	}
	for key, entry := range doc.Trusted {
		principal, err := id.ParsePrincipalID(key)
		if err != nil {
			return nil, storeErr(backendFile, "open", fmt.Errorf("parse %s: key %q: %w", path, key, err))
		}
		s.records[principal] = models.TrustRecord{PrincipalID: principal, Address: entry.Address, UpdatedAt: entry.UpdatedAt}
	}
	return s, nil
}

func (s *File) SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error {
	if err := ctx.Err(); err != nil {
		return storeErr(backendFile, "set", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storeErr(backendFile, "set", ErrClosed)
	}

	if cur, ok := s.records[principal]; ok && cur.Address == address {
		return nil
	}

	next := maps.Clone(s.records)
	next[principal] = models.TrustRecord{PrincipalID: principal, Address: address, UpdatedAt: time.Now().UTC()}
	if err := s.persist(next); err != nil {
		return storeErr(backendFile, "set", err)
	}
	s.records = next
	return nil
}

func (s *File) GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, storeErr(backendFile, "get", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, storeErr(backendFile, "get", ErrClosed)
	}
	rec, ok := s.records[principal]
	return rec.Address, ok, nil
}

func (s *File) RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, storeErr(backendFile, "remove", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, storeErr(backendFile, "remove", ErrClosed)
	}
	if _, ok := s.records[principal]; !ok {
		return false, nil
	}

	next := maps.Clone(s.records)
	delete(next, principal)
	if err := s.persist(next); err != nil {
		return false, storeErr(backendFile, "remove", err)
	}
	s.records = next
	return true, nil
}

func (s *File) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *File) persist(records map[id.PrincipalID]models.TrustRecord) error {
	doc := fileDocument{Trusted: make(map[string]fileEntry, len(records))}
	for principal, rec := range records {
		doc.Trusted[principal.String()] = fileEntry{Address: rec.Address, UpdatedAt: rec.UpdatedAt}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck // sync error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
