package pipeio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/muesli/cancelreader"
)

// fakeConn records what is sent and replies with a fixed answer once the
// sending side is shut down.
type fakeConn struct {
	sent        bytes.Buffer
	reply       io.Reader
	writeClosed bool
	writeErr    error
	closeErr    error
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if !f.writeClosed {
		return 0, errors.New("read before CloseWrite")
	}
	return f.reply.Read(p)
}

func (f *fakeConn) Write(p []byte) (int, error) {
	if f.writeClosed {
		return 0, errors.New("write after CloseWrite")
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.sent.Write(p)
}

func (f *fakeConn) CloseWrite() error {
	f.writeClosed = true
	return f.closeErr
}

// local is a fake terminal: a fixed input and a captured output.
type local struct {
	in  io.Reader
	out bytes.Buffer
}

func (l *local) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *local) Write(p []byte) (int, error) { return l.out.Write(p) }

// cancelled yields some input, then reports a cancelled read.
type cancelled struct {
	data io.Reader
}

func (c *cancelled) Read(p []byte) (int, error) {
	n, err := c.data.Read(p)
	if err == io.EOF {
		return 0, cancelreader.ErrCanceled
	}
	return n, err
}

func TestPipe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        io.Reader
		reply        string
		writeErr     error
		closeErr     error
		wantSent     string
		wantReceived string
		wantErr      bool
	}{
		{
			name:         "echo",
			input:        strings.NewReader("ping"),
			reply:        "ping",
			wantSent:     "ping",
			wantReceived: "ping",
		},
		{
			name:         "no input",
			input:        strings.NewReader(""),
			reply:        "banner",
			wantSent:     "",
			wantReceived: "banner",
		},
		{
			name:         "cancelled input ends sending",
			input:        &cancelled{data: strings.NewReader("partial")},
			reply:        "ok",
			wantSent:     "partial",
			wantReceived: "ok",
		},
		{
			name:     "write fails",
			input:    strings.NewReader("data"),
			writeErr: errors.New("broken pipe"),
			wantErr:  true,
		},
		{
			name:     "half close fails",
			input:    strings.NewReader("data"),
			closeErr: errors.New("not connected"),
			wantSent: "data",
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			conn := &fakeConn{reply: strings.NewReader(tc.reply), writeErr: tc.writeErr, closeErr: tc.closeErr}
			term := &local{in: tc.input}

			sent, received, err := Pipe(conn, term)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Pipe() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got := conn.sent.String(); got != tc.wantSent {
				t.Errorf("sent %q, want %q", got, tc.wantSent)
			}
			if int(sent) != len(tc.wantSent) {
				t.Errorf("sent count = %d, want %d", sent, len(tc.wantSent))
			}
			if tc.wantErr {
				return
			}
			if got := term.out.String(); got != tc.wantReceived {
				t.Errorf("received %q, want %q", got, tc.wantReceived)
			}
			if int(received) != len(tc.wantReceived) {
				t.Errorf("received count = %d, want %d", received, len(tc.wantReceived))
			}
		})
	}
}
