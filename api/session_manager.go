// Package api is a remote assemble/run service: HTTP endpoints to assemble
// a program and run it, plus a WebSocket endpoint that streams step-by-step
// VM state (§3.2).
package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/caslii/comet2/assembler"
	"github.com/caslii/comet2/vm"
)

var (
	// ErrSessionNotFound is returned when a session ID has no live session.
	ErrSessionNotFound = errors.New("session not found")
)

// Session pairs a live VM with the image it was assembled from.
type Session struct {
	ID        string
	Image     *assembler.Image
	VM        *vm.VM
	CreatedAt time.Time
}

// SessionManager maps session IDs to live sessions, the same shape as the
// teacher's session map.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager returns an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create loads the already assembled img into a fresh VM and registers it
// under a new session ID.
func (sm *SessionManager) Create(img *assembler.Image, input []string, quiet bool) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		Image:     img,
		VM:        vm.New(img.Words, img.Entry, input, quiet),
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	sm.sessions[id] = s
	sm.mu.Unlock()

	return s, nil
}

// Get returns the session for id.
func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session.
func (sm *SessionManager) Delete(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, id)
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
