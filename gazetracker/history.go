package gazetracker

// History is a fixed capacity FIFO of points with a running sum.
// Pushing into a full history evicts the oldest sample first.
type History struct {
	buf  []Point
	head int
	n    int
	sum  Point
}

// NewHistory creates a history holding at most capacity samples.
// A capacity below one is raised to one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]Point, capacity)}
}

// Push appends p, evicting the oldest sample if the history is full.
func (h *History) Push(p Point) {
	if h.n == len(h.buf) {
		h.sum = h.sum.Sub(h.buf[h.head])
		h.buf[h.head] = p
		h.head = (h.head + 1) % len(h.buf)
	} else {
		h.buf[(h.head+h.n)%len(h.buf)] = p
		h.n++
	}
	h.sum = h.sum.Add(p)
}

// Mean returns the arithmetic mean of the stored samples,
// or the zero Point when the history is empty.
func (h *History) Mean() Point {
	if h.n == 0 {
		return Point{}
	}
	return h.sum.Mul(1 / float64(h.n))
}

// Len returns the number of stored samples.
func (h *History) Len() int { return h.n }

// Cap returns the maximum number of samples.
func (h *History) Cap() int { return len(h.buf) }

// Samples returns the stored samples from the oldest to the newest.
func (h *History) Samples() []Point {
	out := make([]Point, h.n)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Reset drops every sample.
func (h *History) Reset() {
	h.head, h.n = 0, 0
	h.sum = Point{}
}
