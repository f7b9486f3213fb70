package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/users"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "config error maps to COL001",
			err:         fmt.Errorf("field rules fields.yaml: %w", &columns.ConfigError{Index: 2, Reason: "no property"}),
			wantCode:    "COL001",
			wantMessage: "A field rule is malformed",
		},
		{
			name:        "unreadable rules file",
			err:         errors.New("failed to read field rules from /etc/fields.yaml: open: permission denied"),
			wantCode:    "RULES001",
			wantMessage: "The field rules file could not be read",
		},
		{
			name:        "schema violation",
			err:         errors.New("field rules do not match schema: additional properties 'colour' not allowed"),
			wantCode:    "RULES002",
			wantMessage: "The field rules file is not valid",
		},
		{
			name:        "user not found",
			err:         fmt.Errorf("get user: %w", users.ErrNotFound),
			wantCode:    "USR001",
			wantMessage: "User not found",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB001",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "timeout wins over deadline",
			err:         errors.New("context deadline exceeded (timeout)"),
			wantCode:    "DB003",
			wantMessage: "Operation timed out",
		},
		{
			name:        "deadline exceeded",
			err:         errors.New("list users: context deadline exceeded"),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("USER NOT FOUND"),
			wantCode:    "USR001",
			wantMessage: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(users.ErrNotFound)

	expected := "User not found (Code: USR001). Return to the user list and pick another user"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  columns.ErrInvalidField,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("get user: %w", users.ErrNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "User not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, users.ErrNotFound) {
			t.Error("Unwrap() should reach the original error")
		}
	})
}
