package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := New(KindDirectoryNotFound, "scenes.List", fs.ErrNotExist)

	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Error("Expected error to match ErrDirectoryNotFound")
	}
	if errors.Is(err, ErrMalformedInput) {
		t.Error("Did not expect error to match ErrMalformedInput")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("Expected wrapped cause to stay reachable")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != KindDirectoryNotFound {
		t.Errorf("Expected KindDirectoryNotFound, got %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("Plain errors should report KindInternal")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(KindMalformedInput, "coords.Save", errors.New("bad")), "coords.Save: malformed_input: bad"},
		{New(KindPersistenceFailure, "", errors.New("disk full")), "persistence_failure: disk full"},
		{New(KindInternal, "op", nil), "op: internal_error"},
		{&Error{Kind: KindDirectoryNotFound}, "directory_not_found"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
