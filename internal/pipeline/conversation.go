package pipeline

import (
	"sync"

	"github.com/konvohq/konvo/internal/api"
)

// Conversation is the ordered in-memory view of one session's messages plus
// the in-flight bookkeeping the UI reads: a "thinking" flag that clears as
// soon as speech synthesis starts, and the id of the message being polled.
type Conversation struct {
	mu         sync.Mutex
	sessionID  string
	messages   []api.Message
	processing bool
	inFlightID string
}

func NewConversation(sessionID string) *Conversation {
	return &Conversation{sessionID: sessionID}
}

func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Replace swaps in a full message list, e.g. after loading session history.
func (c *Conversation) Replace(messages []api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]api.Message(nil), messages...)
}

func (c *Conversation) Append(msg api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// ReplaceByID substitutes the stored message wholesale with the fresh
// projection. Returns false if no message with that id exists.
func (c *Conversation) ReplaceByID(msg api.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == msg.ID {
			c.messages[i] = msg
			return true
		}
	}
	return false
}

// Messages returns a copy of the ordered message list.
func (c *Conversation) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Message(nil), c.messages...)
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Processing reports whether the UI should show a "thinking" indicator.
func (c *Conversation) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// InFlight reports whether a turn is still being worked on, either because
// the thinking indicator is up or because a message is still being polled.
func (c *Conversation) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing || c.inFlightID != ""
}

func (c *Conversation) InFlightID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlightID
}

// tryBeginTurn claims the turn slot. The test and the set happen under one
// lock so two racing submissions can never both win.
func (c *Conversation) tryBeginTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing || c.inFlightID != "" {
		return false
	}
	c.processing = true
	return true
}

func (c *Conversation) setInFlightID(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlightID = messageID
}

func (c *Conversation) clearProcessing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing = false
}

func (c *Conversation) endTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing = false
	c.inFlightID = ""
}
