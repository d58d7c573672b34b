package particle

import "github.com/ibal-unist/picdump/internal/host"

// CrossingBuffer accumulates the crossings of one z plane until drained.
type CrossingBuffer struct {
	z      float64
	events []host.Crossing
}

// NewCrossingBuffer returns an empty buffer for plane z.
func NewCrossingBuffer(z float64) *CrossingBuffer {
	return &CrossingBuffer{z: z}
}

// Z returns the plane position.
func (b *CrossingBuffer) Z() float64 {
	return b.z
}

// Accumulate implements host.CrossingSink.
func (b *CrossingBuffer) Accumulate(c ...host.Crossing) {
	b.events = append(b.events, c...)
}

// Len returns the number of buffered crossings.
func (b *CrossingBuffer) Len() int {
	return len(b.events)
}

// Drain returns the buffered crossings in arrival order and empties the
// buffer.
func (b *CrossingBuffer) Drain() []host.Crossing {
	out := b.events
	b.events = nil
	return out
}
