package sim

// A Msg is one unit of user data in flight between two sockets. Content is an
// opaque byte region: the fabric moves it by value between mailboxes and
// never reads, writes, or copies the bytes.
type Msg struct {
	ID  string
	Src SimId
	Dst SimId

	Content []byte
}

// TrafficBytes returns the payload size of the message.
func (m Msg) TrafficBytes() int {
	return len(m.Content)
}

// A DropHook is invoked exactly once per message that the fabric determines
// will never be delivered. It is the sole reclamation channel for message
// payloads: a message handed out by Recv belongs to the receiver and is never
// passed to the hook.
//
// The hook may be invoked concurrently from multiple goroutines and must be
// safe for re-entrant use.
type DropHook func(msg Msg)
