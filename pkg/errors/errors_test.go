package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidFormat, "unknown format %q", "gif"), `INVALID_FORMAT: unknown format "gif"`},
		{"field", New(ErrCodeInvalidInput, "role has no id").At("paths[%d].roles[%d].id", 1, 0), "INVALID_INPUT: paths[1].roles[0].id: role has no id"},
		{"cause", Wrap(ErrCodeStorage, cause, "save map"), "STORAGE_ERROR: save map: connection refused"},
		{"field and cause", Wrap(ErrCodeInvalidInput, cause, "bad level").At("transitions[2]"), "INVALID_INPUT: transitions[2]: bad level: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("put careers.yaml: %w", Wrap(ErrCodeStorage, cause, "save map"))

	if !errors.Is(err, cause) {
		t.Error("cause lost through Wrap")
	}
	if !Is(err, ErrCodeStorage) {
		t.Errorf("code = %q, want %q", GetCode(err), ErrCodeStorage)
	}
}

func TestOutermostCodeWins(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "bad level").At("paths[0].roles[2]")
	outer := Wrap(ErrCodeStorage, inner, "save map")

	if !Is(outer, ErrCodeStorage) || Is(outer, ErrCodeInvalidInput) {
		t.Errorf("Is matched the inner code, GetCode = %q", GetCode(outer))
	}
	if got := FieldOf(outer); got != "" {
		t.Errorf("FieldOf = %q, outer error has no field", got)
	}
	if got := UserMessage(outer); got != "save map" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestAccessorsOnForeignErrors(t *testing.T) {
	plain := errors.New("plain")
	for _, err := range []error{nil, plain} {
		if GetCode(err) != "" || FieldOf(err) != "" || Is(err, ErrCodeInternal) {
			t.Errorf("%v: accessors should report nothing", err)
		}
		if ClassOf(err) != ClassInternal {
			t.Errorf("%v: class = %v", err, ClassOf(err))
		}
	}
	if UserMessage(plain) != "plain" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}

func TestClasses(t *testing.T) {
	tests := []struct {
		code     Code
		class    Class
		exitCode int
	}{
		{ErrCodeInvalidInput, ClassInvalid, 2},
		{ErrCodeInvalidConfig, ClassInvalid, 2},
		{ErrCodeInvalidStation, ClassInvalid, 2},
		{ErrCodeMapNotFound, ClassNotFound, 3},
		{ErrCodeFileNotFound, ClassNotFound, 3},
		{ErrCodeStorage, ClassBackend, 4},
		{ErrCodeTimeout, ClassBackend, 4},
		{ErrCodeUnsupported, ClassUnsupported, 1},
		{ErrCodeInternal, ClassInternal, 1},
		{Code("SOMETHING_NEW"), ClassInternal, 1},
	}
	for _, tt := range tests {
		err := fmt.Errorf("wrapped: %w", New(tt.code, "x"))
		if got := ClassOf(err); got != tt.class {
			t.Errorf("ClassOf(%s) = %v, want %v", tt.code, got, tt.class)
		}
		if got := ExitCode(err); got != tt.exitCode {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.code, got, tt.exitCode)
		}
		if IsInvalid(err) != (tt.class == ClassInvalid) || IsNotFound(err) != (tt.class == ClassNotFound) {
			t.Errorf("%s: IsInvalid/IsNotFound disagree with class %v", tt.code, tt.class)
		}
	}
	if ExitCode(nil) != 0 {
		t.Error("ExitCode(nil) != 0")
	}
	if ExitCode(errors.New("boom")) != 1 {
		t.Error("uncoded error should exit 1")
	}
}

func TestBackend(t *testing.T) {
	slow := fmt.Errorf("server selection: %w", context.DeadlineExceeded)
	if got := GetCode(Backend(slow, "list maps")); got != ErrCodeTimeout {
		t.Errorf("deadline: code = %q, want %q", got, ErrCodeTimeout)
	}
	if got := GetCode(Backend(errors.New("auth failed"), "list maps")); got != ErrCodeStorage {
		t.Errorf("other: code = %q, want %q", got, ErrCodeStorage)
	}
}
