package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := Errorf(KindInsufficientStock, "not enough of item %s", "TEA-GREEN")
	if KindOf(err) != KindInsufficientStock {
		t.Errorf("KindOf = %s, want %s", KindOf(err), KindInsufficientStock)
	}

	wrapped := fmt.Errorf("reserve failed: %w", err)
	if KindOf(wrapped) != KindInsufficientStock {
		t.Errorf("wrapped KindOf = %s, want %s", KindOf(wrapped), KindInsufficientStock)
	}

	if KindOf(errors.New("plain")) != KindStorage {
		t.Errorf("plain errors should default to %s", KindStorage)
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := storagef(cause, "failed to lock item %s", "TEA-GREEN")

	if !errors.Is(err, cause) {
		t.Error("storage error should wrap its cause")
	}
	if KindOf(err) != KindStorage {
		t.Errorf("KindOf = %s, want %s", KindOf(err), KindStorage)
	}
	if !IsKind(err, KindStorage) {
		t.Error("IsKind(err, KindStorage) = false")
	}
	if IsKind(nil, KindStorage) {
		t.Error("IsKind(nil, ...) should be false")
	}
}
