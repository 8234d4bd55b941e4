package utils

import (
	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of price points.
// True ring buffer - no implicit resizing!
// -----------------------------------------------------------------------------

type RingBuffer struct {
	// Each row is (timestamp, price)
	data     [][2]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultMaxHistoryPoints
	}

	return &RingBuffer{
		data:     make([][2]float64, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds a price point, evicting the oldest once full
func (rb *RingBuffer) Append(point models.MPricePoint) {
	rb.data[rb.index] = [2]float64{
		float64(point.Timestamp),
		point.Price,
	}

	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns the most recently appended point, ok=false when empty
func (rb *RingBuffer) Latest() (models.MPricePoint, bool) {
	if rb.size == 0 {
		return models.MPricePoint{}, false
	}

	idx := (rb.index - 1 + rb.capacity) % rb.capacity
	row := rb.data[idx]

	return models.MPricePoint{
		Timestamp: int64(row[0]),
		Price:     row[1],
	}, true
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent points in insertion order
func (rb *RingBuffer) GetLatest(n int) []models.MPricePoint {
	if rb.size == 0 || n <= 0 {
		return []models.MPricePoint{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MPricePoint, count)

	// Latest data sits just behind the write index
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		row := rb.data[idx]

		result[i] = models.MPricePoint{
			Timestamp: int64(row[0]),
			Price:     row[1],
		}
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MPricePoint {
	return rb.GetLatest(rb.size)
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
