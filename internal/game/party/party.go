// Package party models adventuring parties: shared threat, shared trait
// auras, and mutual stealth visibility.
package party

// Party is a named group of players. Members are usernames; the party never
// holds character references, keeping the entity graph acyclic.
type Party struct {
	Name    string
	Leader  string
	Members []string

	// LowestLevel and HighestLevel track the member level spread; party
	// abilities shut off when the spread is too wide.
	LowestLevel  int
	HighestLevel int
}

// levelSpreadForAbilities is the widest member level gap that still allows
// party trait auras to apply.
const levelSpreadForAbilities = 5

// HasMember reports whether username belongs to the party.
func (p *Party) HasMember(username string) bool {
	for _, m := range p.Members {
		if m == username {
			return true
		}
	}
	return false
}

// OtherMembers returns every member except username.
//
// Postcondition: the returned slice is a fresh allocation.
func (p *Party) OtherMembers(username string) []string {
	out := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		if m != username {
			out = append(out, m)
		}
	}
	return out
}

// CanApplyPartyAbilities reports whether the party's trait auras are live.
func (p *Party) CanApplyPartyAbilities() bool {
	return len(p.Members) > 1 && p.HighestLevel-p.LowestLevel <= levelSpreadForAbilities
}

// Manager tracks all parties and resolves membership by username.
type Manager struct {
	parties  map[string]*Party
	byMember map[string]*Party
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		parties:  make(map[string]*Party),
		byMember: make(map[string]*Party),
	}
}

// Register adds or replaces a party and reindexes its members.
//
// Precondition: p must not be nil and p.Name must not be empty.
func (m *Manager) Register(p *Party) {
	if existing, ok := m.parties[p.Name]; ok {
		for _, member := range existing.Members {
			delete(m.byMember, member)
		}
	}
	m.parties[p.Name] = p
	for _, member := range p.Members {
		m.byMember[member] = p
	}
}

// Disband removes the named party and clears its member index entries.
func (m *Manager) Disband(name string) {
	p, ok := m.parties[name]
	if !ok {
		return
	}
	for _, member := range p.Members {
		delete(m.byMember, member)
	}
	delete(m.parties, name)
}

// PartyFor returns the party username belongs to, or nil.
func (m *Manager) PartyFor(username string) *Party {
	return m.byMember[username]
}
