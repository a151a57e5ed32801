package errs

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWrapPreservesChain(t *testing.T) {
	root := errors.New("root cause")

	wrapped := Wrap(root, "outer")
	if !errors.Is(wrapped, root) {
		t.Fatalf("Wrap() broke the error chain")
	}
	if wrapped.Error() != "outer: root cause" {
		t.Fatalf("Wrap() message = %q", wrapped.Error())
	}

	if Wrap(nil, "outer") != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestWithStackCapturesOnce(t *testing.T) {
	root := errors.New("root cause")

	stacked := WithStack(root)
	var se *StackError
	if !errors.As(stacked, &se) {
		t.Fatalf("WithStack() did not attach a stack")
	}
	if len(se.Stack()) == 0 {
		t.Fatalf("Stack() is empty")
	}

	if again := WithStack(stacked); again != stacked {
		t.Fatalf("WithStack() should not re-capture an existing stack")
	}

	wrapped := Wrap(stacked, "open db")
	if !errors.As(wrapped, &se) {
		t.Fatalf("stack lost after wrapping")
	}
}

func TestLoggableIncludesChainAndStack(t *testing.T) {
	err := Wrap(WithStack(errors.New("root cause")), "open db")

	value := Loggable(err).LogValue()
	if value.Kind() != slog.KindGroup {
		t.Fatalf("LogValue() kind = %v", value.Kind())
	}

	var sawChain, sawStack bool
	for _, attr := range value.Group() {
		switch attr.Key {
		case "chain":
			sawChain = true
		case "stack":
			sawStack = strings.Contains(attr.Value.String(), "goroutine")
		}
	}
	if !sawChain || !sawStack {
		t.Fatalf("LogValue() chain=%v stack=%v, want both", sawChain, sawStack)
	}
}
