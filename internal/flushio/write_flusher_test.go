package flushio_test

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jcorbin/funcmem/internal/flushio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewWriteFlusher(t *testing.T) {
	var buf bytes.Buffer
	wf := flushio.NewWriteFlusher(&buf)
	_, err := io.WriteString(wf, "direct")
	require.NoError(t, err)
	assert.Equal(t, "direct", buf.String(), "expected buffers to be written through")
	assert.NoError(t, wf.Flush())

	var sb strings.Builder
	bw := bufio.NewWriter(&sb)
	assert.Equal(t, bw, flushio.NewWriteFlusher(bw), "expected flushers to be kept")

	assert.NoError(t, flushio.NewWriteFlusher(io.Discard).Flush())

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	wf = flushio.NewWriteFlusher(f)
	_, isBuffered := wf.(*bufio.Writer)
	assert.True(t, isBuffered, "expected files to be buffered")
	io.WriteString(wf, "later")
	fi, _ := f.Stat()
	assert.Equal(t, int64(0), fi.Size(), "expected nothing written before flush")
	require.NoError(t, wf.Flush())
	fi, _ = f.Stat()
	assert.Equal(t, int64(5), fi.Size(), "expected flush to write")
}
