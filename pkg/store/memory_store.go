package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"phytoguard/pkg/domain"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	scans    []domain.ScanRecord
	diseases map[string]domain.Disease
}

// NewMemoryStore returns an empty store pre-loaded with the disease library.
func NewMemoryStore() *MemoryStore {
	diseases := make(map[string]domain.Disease, len(seedDiseases))
	for _, d := range seedDiseases {
		diseases[d.ID] = d
	}
	return &MemoryStore{
		users:    make(map[string]domain.User),
		diseases: diseases,
	}
}

func (s *MemoryStore) CreateUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return errors.New("email already registered")
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) InsertScan(rec domain.ScanRecord) (domain.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	if rec.Symptoms == nil {
		rec.Symptoms = []string{}
	}
	if rec.Prevention == nil {
		rec.Prevention = []string{}
	}
	if rec.Treatments == nil {
		rec.Treatments = map[string]string{}
	}
	s.scans = append(s.scans, rec)
	return rec, nil
}

func (s *MemoryStore) ListScansByUser(userID string, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Insertion order is creation order, so walking backwards yields
	// newest-first even when timestamps collide.
	recs := make([]domain.ScanRecord, 0)
	for i := len(s.scans) - 1; i >= 0 && len(recs) < limit; i-- {
		if s.scans[i].UserID == userID {
			recs = append(recs, s.scans[i])
		}
	}
	return recs, nil
}

func (s *MemoryStore) ListDiseases() ([]domain.Disease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.Disease, 0, len(s.diseases))
	for _, d := range s.diseases {
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *MemoryStore) GetDisease(id string) (domain.Disease, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diseases[id]
	return d, ok, nil
}
