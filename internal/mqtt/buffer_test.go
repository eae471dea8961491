package mqtt

import "testing"

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	if got2 := rb.drainAll(); got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingBufferOverflowKeepsNewest(t *testing.T) {
	rb := newRingBuffer(5)
	for i := 0; i < 8; i++ {
		rb.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	if rb.droppedCount() != 3 {
		t.Errorf("dropped: got %d, want 3", rb.droppedCount())
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	// Should keep the most recent 5: payloads 3..7
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i+3) {
			t.Errorf("item %d: expected payload %d, got %d", i, i+3, got[i].payload[0])
		}
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := newRingBuffer(4)
	for i := 0; i < 3; i++ {
		rb.push(queuedMsg{payload: []byte{byte(i)}})
	}
	rb.drainAll()

	// Buffer indices now wrapped; order must still hold.
	for i := 10; i < 13; i++ {
		rb.push(queuedMsg{payload: []byte{byte(i)}})
	}
	got := rb.drainAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i := 0; i < 3; i++ {
		if got[i].payload[0] != byte(i+10) {
			t.Errorf("item %d: expected %d, got %d", i, i+10, got[i].payload[0])
		}
	}
}

func TestRingBufferDroppedResetsOnDrain(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(queuedMsg{})
	rb.push(queuedMsg{})
	rb.push(queuedMsg{})
	if rb.droppedCount() != 1 {
		t.Fatalf("dropped: got %d, want 1", rb.droppedCount())
	}

	rb.drainAll()
	if rb.droppedCount() != 0 {
		t.Errorf("dropped should reset on drain, got %d", rb.droppedCount())
	}
	if rb.len() != 0 {
		t.Errorf("len should be 0 after drain, got %d", rb.len())
	}
}
