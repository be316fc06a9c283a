package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"rashan/models"
)

// FileStore keeps the ledger in a single JSON file: loaded whole on open,
// rewritten whole on every append. The mutex serializes the whole
// check-append-save sequence so concurrent webhook deliveries cannot lose
// updates, and byID makes duplicate detection O(1).
type FileStore struct {
	path string

	mu        sync.RWMutex
	donations []models.Donation
	byID      map[string]struct{}
}

// NewFileStore opens the ledger at path; a missing file means an empty
// ledger.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, byID: make(map[string]struct{})}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var donations []models.Donation
	if err := json.NewDecoder(f).Decode(&donations); err != nil {
		return err
	}
	s.donations = donations
	for _, d := range donations {
		s.byID[d.TransactionID] = struct{}{}
	}
	return nil
}

// save rewrites the whole file. Callers must hold mu.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.donations, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *FileStore) Append(ctx context.Context, d models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.TransactionID]; ok {
		return ErrDuplicate
	}
	s.donations = append(s.donations, d)
	if err := s.save(); err != nil {
		// keep memory consistent with what is on disk
		s.donations = s.donations[:len(s.donations)-1]
		return err
	}
	s.byID[d.TransactionID] = struct{}{}
	return nil
}

func (s *FileStore) All(ctx context.Context) ([]models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Donation, len(s.donations))
	copy(out, s.donations)
	return out, nil
}

var _ DonationStore = (*FileStore)(nil)
