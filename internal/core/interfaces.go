package core

// Frame is a raw outbound payload (an encoded signaling event).
type Frame []byte

// ConnID identifies a single live transport connection. Minted per
// websocket upgrade, never reused.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped int
}
