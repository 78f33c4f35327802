package sim

import "sync/atomic"

// A Socket is the per-endpoint handle to the fabric. It is bound to one id
// and one mailbox for its whole life and routes sends through the context
// that created it. The context owns the mailbox; the socket only borrows the
// context, so releasing sockets and shutting the context down can happen in
// either order.
type Socket struct {
	id  SimId
	box *mailbox
	ctx *Context

	released int32
}

// ID returns the identifier of the socket. The value is stable for the whole
// life of the handle.
func (s *Socket) ID() SimId {
	return s.id
}

// SendTo routes one message to the socket identified by to. The call never
// blocks. When the message cannot be placed in a live mailbox the context's
// drop hook consumes it before SendTo returns, and the call still succeeds:
// sending to a departed peer is silent in this delivery model. Self-sends
// are ordinary sends.
func (s *Socket) SendTo(to SimId, payload []byte) error {
	if atomic.LoadInt32(&s.released) != 0 {
		return NewError(NullPointerArgument, "socket already released")
	}

	return s.ctx.route(s.id, to, payload)
}

// Recv blocks until a message arrives, then transfers ownership of the
// payload to the caller. A SocketDisconnected error reports that the mailbox
// is closed and drained, so no message will ever arrive; the caller is
// expected to release the socket.
//
// Racing Recv calls from multiple goroutines are tolerated: each message is
// handed to exactly one of them. One receiver per socket is the intended
// pattern.
func (s *Socket) Recv() (SimId, []byte, error) {
	if atomic.LoadInt32(&s.released) != 0 {
		return 0, nil, NewError(NullPointerArgument, "socket already released")
	}

	msg, ok := s.box.Retrieve()
	if !ok {
		return 0, nil, NewError(SocketDisconnected, "mailbox closed and drained")
	}

	s.ctx.msgDelivered(msg)

	return msg.Src, msg.Content, nil
}

// AcceptHook registers a hook on the socket's mailbox. The hook observes
// HookPosMailboxPush and HookPosMailboxRetrieve for this endpoint only,
// which narrows instrumentation to one endpoint where the context-level
// positions cover the whole fabric.
func (s *Socket) AcceptHook(hook Hook) {
	s.box.AcceptHook(hook)
}

// NumHooks returns the number of hooks registered on the socket's mailbox.
func (s *Socket) NumHooks() int {
	return s.box.NumHooks()
}

// Release closes the socket's mailbox, removes its routing entry, and feeds
// every message still queued to the drop hook. Idempotent; later operations
// on the handle fail with NullPointerArgument. The id is never reassigned.
func (s *Socket) Release() error {
	if !atomic.CompareAndSwapInt32(&s.released, 0, 1) {
		return NewError(NullPointerArgument, "socket already released")
	}

	s.ctx.removeSocket(s.id)

	return nil
}
