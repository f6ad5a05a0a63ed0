// Copyright © 2018 The ELPS authors

package pyscantest

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// Logger is an io.Writer that forwards each complete line to t.Log.
type Logger struct {
	t   testing.TB
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i])) // slice does not include \n
		log.buf = log.buf[i+1:]
	}
}

func (log *Logger) Flush() {
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}

// Zerolog returns a debug level logger whose output goes to t.Log.
func Zerolog(t testing.TB) zerolog.Logger {
	l := NewLogger(t)
	t.Cleanup(l.Flush)
	return zerolog.New(zerolog.ConsoleWriter{Out: l, NoColor: true}).Level(zerolog.DebugLevel)
}
