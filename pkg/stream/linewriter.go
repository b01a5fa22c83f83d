// Package stream splits an incremental byte stream into complete lines
// for live log forwarding.
package stream

import "bytes"

// LineWriter is an io.Writer that buffers incoming bytes and hands every
// complete line to its sink, in arrival order. The trailing newline (and a
// preceding carriage return, if present) is trimmed; nothing else is.
//
// Splitting happens on raw bytes and a line is only converted to string once
// its terminator has arrived, so multi-byte UTF-8 sequences crossing chunk
// boundaries are never cut apart.
type LineWriter struct {
	sink func(line string)
	buf  []byte
}

// NewLineWriter returns a LineWriter emitting lines to sink.
func NewLineWriter(sink func(line string)) *LineWriter {
	return &LineWriter{sink: sink}
}

// Write implements io.Writer. It never returns an error.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.sink(trimEOL(w.buf[:i+1]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits any buffered trailing fragment as a final line. Call it once
// the source stream has reached end-of-data; a stream whose last line had no
// terminator would otherwise lose it.
func (w *LineWriter) Flush() {
	if len(w.buf) == 0 {
		return
	}
	w.sink(trimEOL(w.buf))
	w.buf = nil
}

func trimEOL(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return string(b)
}
