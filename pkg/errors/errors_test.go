package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap(nil, "ignored") != nil {
		t.Fatal("Wrap(nil) should stay nil")
	}

	err := Wrap(ErrUnreadableTarget, "s3://games/setup.exe")
	if got, want := err.Error(), "s3://games/setup.exe: target is not readable"; got != want {
		t.Errorf("Wrap() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnreadableTarget) {
		t.Error("wrapped error should match ErrUnreadableTarget")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "GET %s", "x") != nil {
		t.Fatal("Wrapf(nil) should stay nil")
	}

	err := Wrapf(ErrTransport, "GET %s: unexpected status code %d", "/files/setup.exe", 503)
	want := "GET /files/setup.exe: unexpected status code 503: transport failure"
	if err.Error() != want {
		t.Errorf("Wrapf() = %q, want %q", err.Error(), want)
	}
}

func TestSentinelHierarchy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"range is a transport failure", Wrapf(ErrRangeNotSatisfiable, "offset %d", 10), ErrTransport, true},
		{"transport is not a range failure", Wrap(ErrTransport, "GET"), ErrRangeNotSatisfiable, false},
		{"exit request is not a forced exit", ErrExitRequested, ErrForcedExit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetailHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"log level", ErrInvalidLogLevelWithDetails("loud"), ErrInvalidLogLevel, "'loud'"},
		{"log format", ErrInvalidLogFormatWithDetails("xml"), ErrInvalidLogFormat, "text, json"},
		{"storage class", ErrInvalidStorageClassWithDetails("COLD", []string{"STANDARD", "GLACIER"}), ErrInvalidStorageClass, "GLACIER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should match %v", tt.err, tt.sentinel)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("%q should contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}
