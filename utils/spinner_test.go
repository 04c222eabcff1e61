package utils

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_StartStop(t *testing.T) {
	var out syncBuffer
	s := NewSpinner("working", time.Millisecond)
	s.SetWriter(&out)

	s.Start()
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.StopMsg = "done"
	s.Stop()
	s.Stop()

	assert.Contains(t, out.String(), "working")
	assert.Contains(t, out.String(), "done")
}
