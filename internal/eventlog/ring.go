package eventlog

// ringBuffer is a fixed-capacity FIFO of recent entries; the oldest is dropped when full.
// Not safe for concurrent use; the caller synchronizes.
type ringBuffer struct {
	buf      []Entry
	capacity int
	head     int // next write position
	count    int
	dropped  int
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{
		buf:      make([]Entry, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(e Entry) {
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.capacity
	if r.count == r.capacity {
		// Overwrote the oldest entry; count stays at capacity.
		r.dropped++
		return
	}
	r.count++
}

// items returns the buffered entries, oldest first.
func (r *ringBuffer) items() []Entry {
	if r.count == 0 {
		return nil
	}

	result := make([]Entry, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
