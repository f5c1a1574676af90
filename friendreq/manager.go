package friendreq

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager holds the active pending list for one local user. It only
// manages state; publishing decisions to the broker is the caller's job.
type Manager struct {
	self string

	mu      sync.RWMutex
	pending []*Request
}

// NewManager creates an empty manager for the given local user.
func NewManager(self string) *Manager {
	return &Manager{self: self}
}

// Add appends a new pending request from the given requester. A second
// request from a requester whose earlier request is still unresolved is
// dropped, not double-counted; the existing entry is returned.
func (m *Manager) Add(requester string) (*Request, bool) {
	if requester == "" || requester == m.self {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, req := range m.pending {
		if req.Requester == requester {
			logrus.WithFields(logrus.Fields{
				"function":  "Add",
				"requester": requester,
				"id":        req.ID,
			}).Debug("duplicate friend request collapsed")
			return req, false
		}
	}

	req := &Request{
		ID:         uuid.NewString(),
		Requester:  requester,
		Status:     StatusPending,
		ReceivedAt: time.Now(),
	}
	m.pending = append(m.pending, req)

	logrus.WithFields(logrus.Fields{
		"function":  "Add",
		"requester": requester,
		"id":        req.ID,
	}).Info("friend request pending")
	return req, true
}

// LoadSnapshot ingests the pendingFriendRequests list from the profile,
// with the same de-duplication as live arrivals. Returns how many new
// entries were added.
func (m *Manager) LoadSnapshot(requesters []string) int {
	added := 0
	for _, requester := range requesters {
		if _, ok := m.Add(requester); ok {
			added++
		}
	}
	return added
}

// Pending returns a copy of the active pending list, oldest first.
func (m *Manager) Pending() []*Request {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Request, len(m.pending))
	copy(out, m.pending)
	return out
}

// Get looks a pending request up by ID.
func (m *Manager) Get(id string) (*Request, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, req := range m.pending {
		if req.ID == id {
			return req, true
		}
	}
	return nil, false
}

// Resolve marks a pending request accepted or declined and removes it from
// the active list regardless of the decision. The resolved request is
// returned so the caller can publish the response exactly once.
func (m *Manager) Resolve(id string, decision Status) (*Request, error) {
	if decision != StatusAccepted && decision != StatusDeclined {
		return nil, ErrUnknownRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, req := range m.pending {
		if req.ID != id {
			continue
		}
		req.Status = decision
		m.pending = append(m.pending[:i], m.pending[i+1:]...)

		logrus.WithFields(logrus.Fields{
			"function":  "Resolve",
			"requester": req.Requester,
			"id":        req.ID,
			"decision":  decision.String(),
		}).Info("friend request resolved")
		return req, nil
	}
	return nil, ErrUnknownRequest
}

// Len returns the number of unresolved requests.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

// Clear drops every pending request. Used on logout.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}
