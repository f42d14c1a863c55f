//go:build unix

package dial

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"dominicbreuker/gosock/pkg/config"
	"dominicbreuker/gosock/pkg/echo"
	"dominicbreuker/gosock/pkg/neterr"
	"dominicbreuker/gosock/pkg/serve"
	"dominicbreuker/gosock/pkg/socket"
)

// terminal is a fake stdio with fixed input and captured output.
type terminal struct {
	in     io.Reader
	mu     sync.Mutex
	out    bytes.Buffer
	closed bool
}

func (f *terminal) Read(p []byte) (int, error) { return f.in.Read(p) }

func (f *terminal) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Write(p)
}

func (f *terminal) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *terminal) output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.String()
}

func startEcho(t *testing.T) int {
	t.Helper()

	task := serve.ListenAndServe(context.Background(), 0, 4, echo.Handler(nil))
	t.Cleanup(task.Stop)

	select {
	case <-task.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("echo server never became ready")
	}
	if task.Port() == 0 {
		t.Fatalf("bind failed: %v", task.Err())
	}
	return task.Port()
}

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}

	if cmd.Name != "dial" {
		t.Errorf("command name = %q; want %q", cmd.Name, "dial")
	}

	if cmd.Action == nil {
		t.Error("command action should not be nil")
	}

	if !strings.Contains(cmd.ArgsUsage, "host") {
		t.Errorf("args usage = %q, should mention host", cmd.ArgsUsage)
	}
}

func TestAction_BadArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"no target", []string{"dial"}},
		{"port not a number", []string{"dial", "localhost", "http"}},
		{"port out of range", []string{"dial", "localhost", "70000"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if err := GetCommand().Run(context.Background(), tc.args); err == nil {
				t.Errorf("Run(%q) error = nil, want failure", tc.args)
			}
		})
	}
}

func TestRun_Echo(t *testing.T) {
	t.Parallel()

	port := startEcho(t)
	term := &terminal{in: strings.NewReader("hello gosock")}

	cfg := &config.Client{Host: "127.0.0.1", Port: port}
	if err := run(context.Background(), cfg, term, nil); err != nil {
		t.Fatalf("run() = %v", err)
	}

	if got := term.output(); got != "hello gosock" {
		t.Errorf("output = %q, want %q", got, "hello gosock")
	}
}

func TestRun_Refused(t *testing.T) {
	t.Parallel()

	// grab a free port, then release it so nothing listens there
	ln := socket.Bind(0, 1)
	if !ln.Usable() {
		t.Fatalf("Bind(): %v", ln.Err())
	}
	port := ln.Port()
	ln.Close()

	cfg := &config.Client{Host: "127.0.0.1", Port: port}
	err := run(context.Background(), cfg, &terminal{in: strings.NewReader("")}, nil)
	if !errors.Is(err, neterr.ConnectionRefused) {
		t.Errorf("run() = %v, want %v", err, neterr.ConnectionRefused)
	}
}

func TestRun_CancelWhileWaitingForReply(t *testing.T) {
	t.Parallel()

	// a server that reads everything and never answers or closes
	release := make(chan struct{})
	silent := func(c *socket.Conn) {
		_, _ = io.Copy(io.Discard, c)
		<-release
	}
	task := serve.ListenAndServe(context.Background(), 0, 1, silent)
	defer task.Stop()
	defer close(release)
	<-task.Ready()
	if task.Port() == 0 {
		t.Fatalf("bind failed: %v", task.Err())
	}

	ctx, cancel := context.WithCancel(context.Background())
	term := &terminal{in: strings.NewReader("anyone there?")}
	cfg := &config.Client{Host: "127.0.0.1", Port: task.Port()}

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, cfg, term, nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("run() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}
