package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation, safe for concurrent
// use. It backs tests and the default data backend; all data is lost on
// restart.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]map[string]Record // pk -> sk -> record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[string]map[string]Record),
	}
}

func (s *MemoryStore) Put(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partition, ok := s.recs[rec.PK]
	if !ok {
		partition = make(map[string]Record)
		s.recs[rec.PK] = partition
	}
	partition[rec.SK] = copyRecord(rec)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, pk, sk string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[pk][sk]
	if !ok {
		return nil, nil
	}
	out := copyRecord(rec)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, pk, sk string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.recs[pk], sk)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for sk, rec := range s.recs[pk] {
		if opts.Prefix != "" && !strings.HasPrefix(sk, opts.Prefix) {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Descending {
			return out[i].SK > out[j].SK
		}
		return out[i].SK < out[j].SK
	})
	return out, nil
}

func (s *MemoryStore) Scan(ctx context.Context, filter func(Record) bool) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, partition := range s.recs {
		for _, rec := range partition {
			if filter == nil || filter(rec) {
				out = append(out, copyRecord(rec))
			}
		}
	}
	return out, nil
}

// copyRecord detaches the Data slice so callers cannot mutate stored state.
func copyRecord(rec Record) Record {
	out := rec
	if rec.Data != nil {
		out.Data = make([]byte, len(rec.Data))
		copy(out.Data, rec.Data)
	}
	return out
}
