package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if Wrap(IOFailure, "copy", "/x", nil) != nil {
		t.Fatalf("expected nil")
	}
}

func TestKindOfFollowsChain(t *testing.T) {
	base := stderrors.New("permission denied")
	err := fmt.Errorf("job holiday: %w", Wrap(IOFailure, "mkdir", "/dst/2020", base))
	if KindOf(err) != IOFailure {
		t.Fatalf("expected io failure, got %s", KindOf(err))
	}
	if !stderrors.Is(err, base) {
		t.Fatalf("expected chain to reach base error")
	}
	if KindOf(base) != Internal {
		t.Fatalf("expected internal for plain error")
	}
}

func TestUserMessage(t *testing.T) {
	err := Wrap(InvalidConfig, "config", "holiday", stderrors.New("missing src"))
	if got := UserMessage(err); got != "Invalid configuration [holiday]: missing src" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Fatalf("unexpected message %q", got)
	}
}
