package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeElementNotFound, "element not found")
		if err.Error() != "[ELEMENT_NOT_FOUND] element not found" {
			t.Errorf("expected [ELEMENT_NOT_FOUND] element not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("read failed")
		err := Wrap(original, CodeCorruptSnapshot, "snapshot unreadable")
		expected := "[CORRUPT_SNAPSHOT] snapshot unreadable: read failed"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeInvalidParameter, "bad depth")
		if !IsCode(err, CodeInvalidParameter) {
			t.Error("expected IsCode to return true for CodeInvalidParameter")
		}
		if IsCode(err, CodeElementNotFound) {
			t.Error("expected IsCode to return false for CodeElementNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeSnapshotNotFound, "no snapshot")
		if !IsCode(err, CodeSnapshotNotFound) {
			t.Error("expected IsCode to return true for wrapped CodeSnapshotNotFound")
		}
	})

	t.Run("CodeOf", func(t *testing.T) {
		if CodeOf(New(CodeSnapshotNotFound, "x")) != CodeSnapshotNotFound {
			t.Error("expected CodeOf to unwrap the domain code")
		}
		if CodeOf(errors.New("plain")) != CodeInternal {
			t.Error("expected CodeOf to default to CodeInternal")
		}
	})
}
