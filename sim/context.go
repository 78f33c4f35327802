package sim

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// HookPosMsgSend marks when the routing fabric accepts a message from a
// sender.
var HookPosMsgSend = &HookPos{Name: "Msg Send"}

// HookPosMsgRecv marks when a receiver takes delivery of a message.
var HookPosMsgRecv = &HookPos{Name: "Msg Recv"}

// HookPosMsgDrop marks when a message is handed to the drop hook instead of
// a receiver.
var HookPosMsgDrop = &HookPos{Name: "Msg Drop"}

const (
	ctxOpen int32 = iota
	ctxShuttingDown
	ctxDestroyed
)

// A Context owns a population of sockets, allocates their identifiers, and
// conveys messages between them. It moves through the states
// open -> shutting down -> destroyed; only an open context accepts Open and
// routes messages.
type Context struct {
	HookableBase

	name   string
	onDrop DropHook

	state int32
	ids   idAllocator

	mu      sync.RWMutex
	sockets map[SimId]*mailbox
}

// NewContext creates an empty fabric. onDrop is the sole reclamation channel
// for undelivered message payloads; it may be invoked concurrently from
// multiple goroutines. A nil onDrop discards undelivered payloads.
func NewContext(name string, onDrop DropHook) *Context {
	NameMustBeValid(name)

	return &Context{
		name:    name,
		onDrop:  onDrop,
		sockets: make(map[SimId]*mailbox),
	}
}

// Name returns the name of the context.
func (c *Context) Name() string {
	return c.name
}

// Open allocates the next identifier, creates a mailbox for it, and returns
// a socket bound to both. Ids from one context are pairwise distinct for the
// context's whole lifetime. Safe under concurrent callers.
func (c *Context) Open() (*Socket, error) {
	if atomic.LoadInt32(&c.state) != ctxOpen {
		return nil, NewError(NullPointerArgument, "context is shut down")
	}

	id := c.ids.alloc()
	box := newMailbox(fmt.Sprintf("%s.Mailbox[%d]", c.name, id))

	c.mu.Lock()
	if atomic.LoadInt32(&c.state) != ctxOpen {
		c.mu.Unlock()
		return nil, NewError(NullPointerArgument, "context is shut down")
	}

	if _, exists := c.sockets[id]; exists {
		c.mu.Unlock()
		log.Panic("socket id reused")
	}

	c.sockets[id] = box
	c.mu.Unlock()

	return &Socket{id: id, box: box, ctx: c}, nil
}

// route conveys one message from the sender to the recipient's mailbox. A
// recipient that never existed, was released, or closed while the message
// was in flight is not an error: the message goes to the drop hook and the
// send still succeeds.
func (c *Context) route(from, to SimId, payload []byte) error {
	if atomic.LoadInt32(&c.state) != ctxOpen {
		return NewError(NullPointerArgument, "context is shut down")
	}

	msg := Msg{
		ID:      GetIDGenerator().Generate(),
		Src:     from,
		Dst:     to,
		Content: payload,
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(HookCtx{Domain: c, Pos: HookPosMsgSend, Item: msg})
	}

	c.mu.RLock()
	box := c.sockets[to]
	c.mu.RUnlock()

	if box != nil && box.Push(msg) {
		return nil
	}

	c.dropMsg(msg)

	return nil
}

// Shutdown tears the whole fabric down: every mailbox is closed and its
// backlog is fed to the drop hook. Blocked receivers return
// SocketDisconnected; outstanding socket handles stay safe to call but fail
// cleanly afterwards. The transition is one-way and a second call reports an
// error.
func (c *Context) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&c.state, ctxOpen, ctxShuttingDown) {
		return NewError(NullPointerArgument, "context already shut down")
	}

	c.mu.Lock()
	boxes := make([]*mailbox, 0, len(c.sockets))
	for _, box := range c.sockets {
		boxes = append(boxes, box)
	}
	c.sockets = make(map[SimId]*mailbox)
	c.mu.Unlock()

	for _, box := range boxes {
		box.Close()
	}

	for _, box := range boxes {
		box.Drain(c.dropMsg)
	}

	atomic.StoreInt32(&c.state, ctxDestroyed)

	return nil
}

// removeSocket detaches one mailbox from the routing table, closes it, and
// drains its backlog to the drop hook. Safe to call for an id the context no
// longer knows, so Release after Shutdown stays clean.
func (c *Context) removeSocket(id SimId) {
	c.mu.Lock()
	box, ok := c.sockets[id]
	if ok {
		delete(c.sockets, id)
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	box.Close()
	box.Drain(c.dropMsg)
}

// dropMsg consumes a message that will never be delivered. This is the only
// path to the user-supplied hook, so the hook fires at most once for any
// message.
func (c *Context) dropMsg(msg Msg) {
	if c.NumHooks() > 0 {
		c.InvokeHook(HookCtx{Domain: c, Pos: HookPosMsgDrop, Item: msg})
	}

	if c.onDrop != nil {
		c.onDrop(msg)
	}
}

// msgDelivered records that a receiver took ownership of msg.
func (c *Context) msgDelivered(msg Msg) {
	if c.NumHooks() > 0 {
		c.InvokeHook(HookCtx{Domain: c, Pos: HookPosMsgRecv, Item: msg})
	}
}

// A MailboxStat is a point-in-time view of one mailbox, for monitoring.
type MailboxStat struct {
	ID     SimId `json:"id"`
	Queued int   `json:"queued"`
	Closed bool  `json:"closed"`
}

// SocketCount returns the number of live sockets.
func (c *Context) SocketCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.sockets)
}

// MailboxStats returns a point-in-time view of every live mailbox, ordered
// by id.
func (c *Context) MailboxStats() []MailboxStat {
	c.mu.RLock()
	stats := make([]MailboxStat, 0, len(c.sockets))
	for id, box := range c.sockets {
		stats = append(stats, MailboxStat{
			ID:     id,
			Queued: box.Size(),
			Closed: box.Closed(),
		})
	}
	c.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].ID < stats[j].ID
	})

	return stats
}
