package schema

import (
	"errors"
	"sync"
)

// ErrBufferClosed is returned when reading an image buffer after release.
var ErrBufferClosed = errors.New("image buffer closed")

// Attachement carries media alongside a schema value.
type Attachement struct {
	// ImageURLs attached image urls
	ImageURLs []string `json:"image_url,omitempty"`
	// Images attached in-memory image buffers
	Images []*ImageBuffer `json:"-"`
}

// ImageBuffer holds raw image bytes for a single vision call. The bytes stay
// in memory only and must be released with Close on every exit path.
type ImageBuffer struct {
	mtx    sync.Mutex
	data   []byte
	closed bool
}

// NewImageBuffer wraps image bytes in a closable buffer.
func NewImageBuffer(data []byte) *ImageBuffer {
	return &ImageBuffer{data: data}
}

// Bytes returns the underlying image bytes.
func (b *ImageBuffer) Bytes() ([]byte, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.closed {
		return nil, ErrBufferClosed
	}
	return b.data, nil
}

// Len returns the buffered byte count, zero once closed.
func (b *ImageBuffer) Len() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return len(b.data)
}

// Close releases the buffer. Safe to call more than once.
func (b *ImageBuffer) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.data = nil
	return nil
}
