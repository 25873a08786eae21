// Package capture buffers audio for an in-progress recording, one capture per key.
package capture

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	ErrCaptureActive   = errors.New("a capture is already active for this session")
	ErrNoActiveCapture = errors.New("no active capture for this session")
	ErrCaptureTooLarge = errors.New("capture exceeds the maximum size")
	ErrEmptyCapture    = errors.New("capture contains no audio")
)

// Payload is a finished capture.
type Payload struct {
	MimeType  string
	Data      []byte
	StartedAt time.Time
}

type capture struct {
	mu        sync.Mutex
	mimeType  string
	buf       bytes.Buffer
	startedAt time.Time
	closed    bool
}

// Recorder holds open captures. Captures untouched for idleTimeout are dropped, as if canceled.
type Recorder struct {
	captures *cache.Cache
	maxBytes int
}

func NewRecorder(maxBytes int, idleTimeout time.Duration) *Recorder {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &Recorder{
		captures: cache.New(idleTimeout, idleTimeout/2),
		maxBytes: maxBytes,
	}
}

func (r *Recorder) Start(key, mimeType string) error {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	c := &capture{mimeType: mimeType, startedAt: time.Now()}
	if err := r.captures.Add(key, c, cache.DefaultExpiration); err != nil {
		return ErrCaptureActive
	}
	return nil
}

func (r *Recorder) Append(key string, chunk []byte) error {
	c, err := r.get(key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrNoActiveCapture
	}
	if r.maxBytes > 0 && c.buf.Len()+len(chunk) > r.maxBytes {
		return ErrCaptureTooLarge
	}
	c.buf.Write(chunk)
	r.captures.Set(key, c, cache.DefaultExpiration)
	return nil
}

// Stop closes the capture and hands back its audio.
func (r *Recorder) Stop(key string) (Payload, error) {
	c, err := r.take(key)
	if err != nil {
		return Payload{}, err
	}
	if c.buf.Len() == 0 {
		return Payload{}, ErrEmptyCapture
	}
	return Payload{MimeType: c.mimeType, Data: c.buf.Bytes(), StartedAt: c.startedAt}, nil
}

// Cancel discards the capture.
func (r *Recorder) Cancel(key string) error {
	_, err := r.take(key)
	return err
}

func (r *Recorder) Active(key string) bool {
	_, found := r.captures.Get(key)
	return found
}

func (r *Recorder) get(key string) (*capture, error) {
	x, found := r.captures.Get(key)
	if !found {
		return nil, ErrNoActiveCapture
	}
	return x.(*capture), nil
}

func (r *Recorder) take(key string) (*capture, error) {
	c, err := r.get(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrNoActiveCapture
	}
	c.closed = true
	r.captures.Delete(key)
	return c, nil
}
