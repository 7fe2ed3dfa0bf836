package session

import (
	"fmt"
	"sync"

	"github.com/seiyria/landoftherair/internal/game/character"
)

// Session is one connected player: the account identity, the live
// character the simulation mutates, and the mailbox the transport drains.
type Session struct {
	Username  string
	AccountID int64
	Role      string
	Player    *character.Player
	MapName   string
	Mailbox   *Mailbox
}

// Manager tracks active sessions and map occupancy. Safe for concurrent
// use; the gateway and the world driver both touch it.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session        // username -> session
	mapSets  map[string]map[string]bool // map name -> set of usernames
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		mapSets:  make(map[string]map[string]bool),
	}
}

// Add registers a session for the player. The map comes from the player's
// current position.
//
// Precondition: p is hydrated and p.Username is non-empty.
// Postcondition: returns the created session, or an error if the account
// is already connected.
func (m *Manager) Add(p *character.Player, accountID int64, role string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username := p.Username
	if _, exists := m.sessions[username]; exists {
		return nil, fmt.Errorf("player %q already connected", username)
	}

	sess := &Session{
		Username:  username,
		AccountID: accountID,
		Role:      role,
		Player:    p,
		MapName:   p.Map,
		Mailbox:   NewMailbox(username, 64),
	}

	m.sessions[username] = sess
	m.addToMap(sess.MapName, username)
	return sess, nil
}

// Remove drops a session and closes its mailbox.
//
// Postcondition: the session is gone from all tracking. Returns an error
// if the account was not connected.
func (m *Manager) Remove(username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[username]
	if !exists {
		return fmt.Errorf("player %q not found", username)
	}

	m.removeFromMap(sess.MapName, username)
	_ = sess.Mailbox.Close()
	delete(m.sessions, username)
	return nil
}

// Move records a map transfer and returns the map the player left.
func (m *Manager) Move(username, newMap string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[username]
	if !exists {
		return "", fmt.Errorf("player %q not found", username)
	}

	oldMap := sess.MapName
	m.removeFromMap(oldMap, username)
	sess.MapName = newMap
	m.addToMap(newMap, username)
	return oldMap, nil
}

// UsernamesOnMap returns the accounts currently on the named map.
func (m *Manager) UsernamesOnMap(mapName string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.mapSets[mapName]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for username := range set {
		out = append(out, username)
	}
	return out
}

// Get returns the session for the account.
//
// Postcondition: returns (session, true) if connected, (nil, false)
// otherwise.
func (m *Manager) Get(username string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[username]
	return sess, ok
}

// All returns every active session. The slice is a snapshot; the sessions
// themselves are shared.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of connected players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Deliver routes a frame to the account's mailbox. Unknown accounts and
// full mailboxes are reported as errors; the caller decides whether either
// disconnects the client.
func (m *Manager) Deliver(username string, data []byte) error {
	m.mu.RLock()
	sess, ok := m.sessions[username]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("player %q not found", username)
	}
	return sess.Mailbox.Deliver(data)
}

func (m *Manager) addToMap(mapName, username string) {
	if m.mapSets[mapName] == nil {
		m.mapSets[mapName] = make(map[string]bool)
	}
	m.mapSets[mapName][username] = true
}

func (m *Manager) removeFromMap(mapName, username string) {
	if set, ok := m.mapSets[mapName]; ok {
		delete(set, username)
		if len(set) == 0 {
			delete(m.mapSets, mapName)
		}
	}
}
