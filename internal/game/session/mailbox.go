// Package session tracks connected players and their map presence, and
// carries simulation output to the transport layer.
package session

import (
	"fmt"
	"sync"
)

// Mailbox buffers outbound frames for one connection. The simulation
// goroutines write to it; the websocket write pump drains Events.
type Mailbox struct {
	username string
	events   chan []byte
	mu       sync.Mutex
	closed   bool
}

// NewMailbox creates a mailbox for the named connection.
//
// Postcondition: the events channel is open and buffered.
func NewMailbox(username string, bufferSize int) *Mailbox {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Mailbox{
		username: username,
		events:   make(chan []byte, bufferSize),
	}
}

// Username returns the connection's account name.
func (m *Mailbox) Username() string {
	return m.username
}

// Deliver enqueues a frame without blocking.
//
// Postcondition: the frame is queued, or an error if the mailbox is closed
// or its buffer is full. A full buffer means the client is not keeping up;
// the caller decides whether that disconnects them.
func (m *Mailbox) Deliver(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("mailbox for %s is closed", m.username)
	}
	select {
	case m.events <- data:
		return nil
	default:
		return fmt.Errorf("mailbox for %s is full", m.username)
	}
}

// Events returns the read-only frame channel the write pump drains.
func (m *Mailbox) Events() <-chan []byte {
	return m.events
}

// Close closes the frame channel. Safe to call more than once; further
// Deliver calls fail.
func (m *Mailbox) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// IsClosed reports whether the mailbox has been closed.
func (m *Mailbox) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
