package shared

import (
	"context"
	"strings"
	"testing"
)

func TestGetDialArgsUsage(t *testing.T) {
	t.Parallel()

	usage := GetDialArgsUsage()

	if !strings.Contains(usage, "host") || !strings.Contains(usage, "port") {
		t.Errorf("GetDialArgsUsage() = %q, should mention host and port", usage)
	}
}

func TestGetCommonFlags(t *testing.T) {
	t.Parallel()

	flags := GetCommonFlags()

	if len(flags) != 1 {
		t.Fatalf("GetCommonFlags() returned %d flags, want 1", len(flags))
	}
	if names := flags[0].Names(); names[0] != VerboseFlag {
		t.Errorf("flag name = %q, want %q", names[0], VerboseFlag)
	}
}

func TestGetServeFlags(t *testing.T) {
	t.Parallel()

	flags := GetServeFlags()

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		for _, name := range flag.Names() {
			flagNames[name] = true
		}
	}

	expected := []string{PortFlag, "p", BacklogFlag, "b", MaxConnsFlag, SlotTimeoutFlag, LogFileFlag, MetricsFlag}
	for _, name := range expected {
		if !flagNames[name] {
			t.Errorf("expected flag %q not found", name)
		}
	}
}

func TestSetupSignalHandling_Stop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := SetupSignalHandling(cancel, nil)
	stop()

	if ctx.Err() != nil {
		t.Error("context cancelled without a signal")
	}
}
