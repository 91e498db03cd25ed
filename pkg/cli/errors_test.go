package cli

import (
	"errors"
	"testing"
)

func TestConfigErrorWithField(t *testing.T) {
	err := NewConfigError("warehouse.path", "missing required field")
	want := "config error in warehouse.path: missing required field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestConfigErrorWithoutField(t *testing.T) {
	err := NewConfigError("", "file not found")
	if err.Error() != "config error: file not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCommandErrorWrapsCause(t *testing.T) {
	cause := errors.New("warehouse unreachable")
	err := NewCommandError("ask", cause)

	if err.Error() != "command ask failed: warehouse unreachable" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is must reach the wrapped cause")
	}
}
