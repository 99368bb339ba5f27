package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoSession means the sid resolves to no live, signed-in session.
var ErrNoSession = errors.New("session: not found")

// Principal is the authenticated user behind a session.
type Principal struct {
	UserID int64
}

// Store resolves a session id written by the sign-in layer.
type Store interface {
	Lookup(ctx context.Context, sid string) (Principal, error)
}

// record is the part of a passport session the gateway reads.
type record struct {
	Passport struct {
		User *struct {
			ID json.Number `json:"id"`
		} `json:"user"`
	} `json:"passport"`
}

func parse(raw []byte) (Principal, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Principal{}, errors.Wrap(err, "decode session")
	}
	if r.Passport.User == nil || r.Passport.User.ID == "" {
		return Principal{}, ErrNoSession
	}
	id, err := r.Passport.User.ID.Int64()
	if err != nil || id <= 0 {
		return Principal{}, errors.Wrapf(ErrNoSession, "bad user id %q", r.Passport.User.ID)
	}
	return Principal{UserID: id}, nil
}

// MemStore holds raw session documents in memory.
type MemStore struct {
	mu   sync.RWMutex
	sess map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{sess: make(map[string][]byte)}
}

// Put stores a raw session document under sid.
func (m *MemStore) Put(sid string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess[sid] = doc
}

// PutUser stores a minimal signed-in session for userID.
func (m *MemStore) PutUser(sid string, userID int64) {
	doc, _ := json.Marshal(map[string]any{
		"passport": map[string]any{"user": map[string]any{"id": userID}},
	})
	m.Put(sid, doc)
}

func (m *MemStore) Lookup(_ context.Context, sid string) (Principal, error) {
	m.mu.RLock()
	doc, ok := m.sess[sid]
	m.mu.RUnlock()
	if !ok {
		return Principal{}, ErrNoSession
	}
	return parse(doc)
}
