package notify

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_PrintsOneLinePerToast(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	Successf(w, "Entrada guardada")
	Errorf(w, "fallo %d", 500)

	out := buf.String()
	assert.Contains(t, out, "Entrada guardada")
	assert.Contains(t, out, "fallo 500")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestRecorder_LastDrainConcurrent(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(Toast{Kind: Info, Message: "x"})
		}()
	}
	wg.Wait()
	assert.Len(t, r.All(), 20)

	Errorf(r, "boom")
	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, Error, last.Kind)
	assert.Equal(t, "error", last.Kind.String())

	assert.Len(t, r.Drain(), 21)
	assert.Empty(t, r.All())
}
