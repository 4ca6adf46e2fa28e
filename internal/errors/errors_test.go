package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(CacheCorrupt, "cache payload unreadable", cause)

	if err.Code != CacheCorrupt {
		t.Errorf("Code = %v, want %v", err.Code, CacheCorrupt)
	}
	if err.Message != "cache payload unreadable" {
		t.Errorf("Message = %q, want %q", err.Message, "cache payload unreadable")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      GitUnavailable,
			message:   "git log failed",
			cause:     errors.New("exit status 128"),
			wantParts: []string{"GIT_UNAVAILABLE", "git log failed", "exit status 128"},
		},
		{
			name:      "without cause",
			code:      InvalidArgument,
			message:   "unknown strategy \"blame\"",
			cause:     nil,
			wantParts: []string{"INVALID_ARGUMENT", "unknown strategy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(InternalError, "something went wrong", cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	if New(Timeout, "timed out", nil).Unwrap() != nil {
		t.Error("Unwrap() on error without cause should return nil")
	}
}

func TestHasCode(t *testing.T) {
	inner := New(InvalidArgument, "bad date", nil)
	outer := New(ConfigFileError, "config invalid", inner)
	wrapped := fmt.Errorf("loading: %w", outer)

	if !HasCode(wrapped, ConfigFileError) {
		t.Error("expected ConfigFileError in chain")
	}
	if !HasCode(wrapped, InvalidArgument) {
		t.Error("expected InvalidArgument in chain")
	}
	if HasCode(wrapped, CacheCorrupt) {
		t.Error("did not expect CacheCorrupt in chain")
	}
	if HasCode(errors.New("plain"), InternalError) {
		t.Error("plain errors carry no code")
	}
	if HasCode(nil, InternalError) {
		t.Error("nil carries no code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", Newf(Timeout, "git took %ds", 5))); got != Timeout {
		t.Errorf("CodeOf = %q, want %q", got, Timeout)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(InvalidArgument, "bad option", nil).WithDetails(map[string]interface{}{"option": "threshold"})
	details, ok := err.Details.(map[string]interface{})
	if !ok || details["option"] != "threshold" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(GitUnavailable); len(fixes) == 0 {
		t.Error("GitUnavailable should have suggested fixes")
	}
	if fixes := GetSuggestedFixes(DataUnavailable); fixes != nil {
		t.Errorf("DataUnavailable should have no fixes, got %v", fixes)
	}
}
