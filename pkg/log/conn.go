package log

import (
	"fmt"
	"io"
	"os"
)

// transcript wraps a connection and appends every byte read from or written
// to it to a file.
type transcript struct {
	rw      io.ReadWriter
	logFile *os.File
}

func (t *transcript) Read(b []byte) (int, error) {
	n, err := t.rw.Read(b)
	if n > 0 {
		if _, werr := t.logFile.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("reading: %s", werr)
		}
	}
	return n, err
}

func (t *transcript) Write(b []byte) (int, error) {
	n, err := t.rw.Write(b)
	if n > 0 {
		if _, werr := t.logFile.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("writing: %s", werr)
		}
	}
	return n, err
}

// Close closes the transcript file. The wrapped connection is left alone;
// it belongs to whoever handed it in.
func (t *transcript) Close() error {
	return t.logFile.Close()
}

// NewTranscript wraps rw so that all data read from and written to it is
// also appended to the file at logFilePath, which is created if missing.
func NewTranscript(rw io.ReadWriter, logFilePath string) (io.ReadWriteCloser, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", logFilePath, err)
	}

	return &transcript{rw: rw, logFile: logFile}, nil
}
