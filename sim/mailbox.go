package sim

import (
	"log"
	"sync"
)

// HookPosMailboxPush marks when a message is appended to a mailbox. Hooks
// attach to a single mailbox through Socket.AcceptHook.
var HookPosMailboxPush = &HookPos{Name: "Mailbox Push"}

// HookPosMailboxRetrieve marks when a message is handed to a receiver.
var HookPosMailboxRetrieve = &HookPos{Name: "Mailbox Retrieve"}

// A mailbox is the FIFO of incoming messages for one socket. Producers push
// concurrently; one receiver blocks on Retrieve. A mailbox moves through the
// states live -> closed -> drained and never reopens.
type mailbox struct {
	HookableBase

	name string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Msg
	closed bool
}

func newMailbox(name string) *mailbox {
	NameMustBeValid(name)

	m := &mailbox{name: name}
	m.cond = sync.NewCond(&m.mu)

	return m
}

// Name returns the name of the mailbox.
func (m *mailbox) Name() string {
	return m.name
}

// Push appends msg and wakes one blocked receiver. It reports false when the
// mailbox is closed, in which case ownership of msg stays with the caller.
func (m *mailbox) Push(msg Msg) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}

	m.queue = append(m.queue, msg)
	m.cond.Signal()
	m.mu.Unlock()

	if m.NumHooks() > 0 {
		m.InvokeHook(HookCtx{
			Domain: m,
			Pos:    HookPosMailboxPush,
			Item:   msg,
		})
	}

	return true
}

// Retrieve blocks until a message is available or the mailbox is closed and
// drained. It reports false once no message will ever arrive. Each message is
// handed to exactly one caller.
func (m *mailbox) Retrieve() (Msg, bool) {
	m.mu.Lock()
	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}

	if len(m.queue) == 0 {
		m.mu.Unlock()
		return Msg{}, false
	}

	msg := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	if m.NumHooks() > 0 {
		m.InvokeHook(HookCtx{
			Domain: m,
			Pos:    HookPosMailboxRetrieve,
			Item:   msg,
		})
	}

	return msg, true
}

// Close marks the mailbox closed and wakes every blocked receiver. Messages
// already queued stay receivable until drained. Idempotent.
func (m *mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
}

// Drain steals the remaining backlog and feeds each message to sink. The
// mailbox must already be closed, so no new message can slip in behind the
// drain.
func (m *mailbox) Drain(sink DropHook) {
	m.mu.Lock()
	if !m.closed {
		m.mu.Unlock()
		log.Panic("mailbox drained before close")
	}

	backlog := m.queue
	m.queue = nil
	m.mu.Unlock()

	for _, msg := range backlog {
		if sink != nil {
			sink(msg)
		}
	}
}

// Size returns the number of queued messages.
func (m *mailbox) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queue)
}

// Closed reports whether the mailbox still accepts messages.
func (m *mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}
