package executor

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestExecute_HelperProcess(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	out, err := New().Execute(context.Background(), os.Args[0], "-test.run=TestExecutorHelper", "--", "hello")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected stdout to contain hello, got %q", out)
	}
}

func TestExecute_FailureIncludesStderr(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_FAIL", "1")

	_, err := New().Execute(context.Background(), os.Args[0], "-test.run=TestExecutorHelper", "--", "boom")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "stderr: boom") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

// TestExecutorHelper is not a real test; it is the child process for the tests above.
func TestExecutorHelper(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if os.Getenv("HELPER_FAIL") == "1" {
		os.Stderr.WriteString(strings.Join(args, " "))
		os.Exit(2)
	}
	os.Stdout.WriteString(strings.Join(args, " ") + "\n")
	os.Exit(0)
}
