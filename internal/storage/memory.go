package storage

// MemStore is an in-memory KV used by tests and as a fallback when no
// durable directory is available.
type MemStore struct {
	values map[string][]byte

	// FailWrites makes Set return an error, for exercising degraded
	// storage paths in tests.
	FailWrites error
}

func NewMemStore() *MemStore {
	return &MemStore{values: map[string][]byte{}}
}

func (s *MemStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemStore) Set(key string, value []byte) error {
	if s.FailWrites != nil {
		return s.FailWrites
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *MemStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}
