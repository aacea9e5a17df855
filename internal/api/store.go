package api

import "sync"

// defaultStoreCapacity bounds the number of derived configs kept for
// retrieval. The oldest entry is evicted first.
const defaultStoreCapacity = 1024

// ConfigStore keeps derived configs so clients can fetch them again by ID.
type ConfigStore struct {
	mu       sync.Mutex
	capacity int
	configs  map[string]ConfigResponse
	order    []string
}

func NewConfigStore(capacity int) *ConfigStore {
	if capacity <= 0 {
		capacity = defaultStoreCapacity
	}
	return &ConfigStore{
		capacity: capacity,
		configs:  make(map[string]ConfigResponse),
	}
}

func (s *ConfigStore) Put(resp ConfigResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[resp.ID]; !ok {
		s.order = append(s.order, resp.ID)
	}
	s.configs[resp.ID] = resp
	for len(s.order) > s.capacity {
		delete(s.configs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *ConfigStore) Get(id string) (ConfigResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.configs[id]
	return resp, ok
}

func (s *ConfigStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[id]; !ok {
		return false
	}
	delete(s.configs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ConfigStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configs)
}
