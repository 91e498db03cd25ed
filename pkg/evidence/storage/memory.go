package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"trustmark-hq/polaris/pkg/evidence"
)

// MemoryStorage is an in-memory Storage implementation for tests and
// ephemeral environments. It honors the same write-once contract as the
// durable backend.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*evidence.EvidenceRecord
}

// NewMemoryStorage creates an empty in-memory evidence store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*evidence.EvidenceRecord),
	}
}

// Store persists a record, rejecting duplicate request ids.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.EvidenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.RequestID]; exists {
		return evidence.NewDuplicateRecordError(record.RequestID)
	}

	copied := *record
	s.records[record.RequestID] = &copied
	return nil
}

// Get retrieves one record by request id, or nil when absent.
func (s *MemoryStorage) Get(ctx context.Context, requestID string) (*evidence.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[requestID]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

// Query retrieves records matching the filter set, newest first unless the
// query asks otherwise.
func (s *MemoryStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(query)

	asc := strings.EqualFold(query.SortOrder, "asc")
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*evidence.EvidenceRecord{}, nil
		}
		matched = matched[query.Offset:]
	}
	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*evidence.EvidenceRecord, 0, len(matched))
	for _, r := range matched {
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

// Count returns the number of records matching the filter set.
func (s *MemoryStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.match(query))), nil
}

// Delete removes matching records and returns how many were removed.
func (s *MemoryStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.match(query)
	for _, r := range matched {
		delete(s.records, r.RequestID)
	}
	return int64(len(matched)), nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// match returns the records satisfying the query filters. Caller holds the
// lock.
func (s *MemoryStorage) match(query *evidence.Query) []*evidence.EvidenceRecord {
	var matched []*evidence.EvidenceRecord
	for _, r := range s.records {
		if query.StartTime != nil && r.Timestamp.Before(*query.StartTime) {
			continue
		}
		if query.EndTime != nil && r.Timestamp.After(*query.EndTime) {
			continue
		}
		if query.RequestID != "" && r.RequestID != query.RequestID {
			continue
		}
		if query.UserRole != "" && r.User.Role != query.UserRole {
			continue
		}
		if query.PolicyResult != "" && r.Decision.Result != query.PolicyResult {
			continue
		}
		if query.SQLHash != "" && r.SQL.SQLHash != query.SQLHash {
			continue
		}
		if query.DataProduct != "" && !containsProduct(r, query.DataProduct) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func containsProduct(r *evidence.EvidenceRecord, product string) bool {
	for _, p := range r.DataProducts.ProductsUsed {
		if p == product {
			return true
		}
	}
	return false
}
