package mqtt

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that holds event messages while the
// broker is unreachable. When full, the oldest message is overwritten;
// recent lamp state beats stale history.
// Not safe for concurrent use; the caller must synchronize.
type ringBuffer struct {
	buf      []queuedMsg
	capacity int
	head     int // next write position
	count    int
	dropped  int // messages overwritten since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]queuedMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg queuedMsg) {
	if r.count == r.capacity {
		// head already points at the oldest entry
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		r.dropped++
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// drainAll returns the queued messages oldest-first and empties the buffer.
func (r *ringBuffer) drainAll() []queuedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]queuedMsg, r.count)
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.dropped = 0
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}

// droppedCount reports how many messages were overwritten since the last
// drain.
func (r *ringBuffer) droppedCount() int {
	return r.dropped
}
