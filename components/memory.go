package components

import (
	"fmt"
	"sync"

	"github.com/healthbutler/healthbutler/schema"
)

// Memory manages the chat history for an agent.
// Thread-safe; one Memory is shared per user conversation.
type Memory struct {
	history     []Message
	turnID      string
	maxMessages int
	mtx         sync.RWMutex
}

// NewMemory initializes the Memory with an empty history and optional cap.
// A maxMessages of zero means unbounded.
func NewMemory(maxMessages int) *Memory {
	return &Memory{
		maxMessages: maxMessages,
		history:     make([]Message, 0, maxMessages+1),
	}
}

// MaxMessages returns the history cap.
func (m *Memory) MaxMessages() int {
	return m.maxMessages
}

// TurnID returns the current turn ID.
func (m *Memory) TurnID() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.turnID
}

// NewTurn starts a new turn with a fresh random turn ID.
func (m *Memory) NewTurn() string {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.turnID = NewTurnID()
	return m.turnID
}

// NewMessage appends a message to the chat history and manages overflow.
func (m *Memory) NewMessage(role MessageRole, content schema.Schema) *Message {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	msg := NewMessage(role, content).SetTurnID(m.turnID)
	m.history = append(m.history, *msg)
	if m.maxMessages > 0 && len(m.history) > m.maxMessages {
		m.history = m.history[1:]
	}
	return msg
}

// History returns a copy of the chat history.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	out := make([]Message, len(m.history))
	copy(out, m.history)
	return out
}

// Reset drops the whole history.
func (m *Memory) Reset() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.history = m.history[:0]
	m.turnID = ""
}

// DeleteTurn removes every message belonging to turnID.
// Returns an error if the turn is not present.
func (m *Memory) DeleteTurn(turnID string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	l := len(m.history)
	list := make([]Message, 0, l)
	for _, v := range m.history {
		if v.TurnID() == turnID {
			continue
		}
		list = append(list, v)
	}
	m.history = list
	num := len(list)
	if num == l {
		return fmt.Errorf("turnID %s not found in memory", turnID)
	}
	if num == 0 {
		m.turnID = ""
	} else if turnID == m.turnID {
		m.turnID = m.history[num-1].TurnID()
	}
	return nil
}

// MessageCount returns the number of messages in the chat history.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}
