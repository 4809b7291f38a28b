package service

import (
	"sync"

	"channelguard/internal/models"
)

// PendingStore holds requests awaiting an owner decision. Submissions and
// decisions interleave arbitrarily across chats, so access is guarded by a
// single lock; ids are unique per submission, so no two operations ever
// contend on the same entry.
type PendingStore struct {
	requests map[string]*models.PendingRequest
	mu       sync.Mutex
}

func NewPendingStore() *PendingStore {
	return &PendingStore{
		requests: make(map[string]*models.PendingRequest),
	}
}

// Put inserts a request under its id.
func (s *PendingStore) Put(req *models.PendingRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
}

// Take removes and returns the request for id. The combined get-and-remove
// is what makes a second decision on the same id a defined miss.
func (s *PendingStore) Take(id string) (*models.PendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if ok {
		delete(s.requests, id)
	}
	return req, ok
}

// Len returns the number of unresolved requests.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
