package core

// # Error Codes Reference
//
// User-facing error messages with codes for support reference. When an
// operator or dashboard user reports a code, look it up here.
//
// # Column Configuration (COL001-COL099)
//
//	COL001 - Invalid field rule: a customization is malformed
//	         Action: Fix the reported rule in the field rules file
//	         Patterns: "invalid field rule"
//
// # Field Rules File (RULES001-RULES099)
//
//	RULES001 - Rules file unreadable: the configured file cannot be opened
//	           Action: Check FIELD_RULES_FILE and file permissions
//	           Patterns: "failed to read field rules"
//
//	RULES002 - Rules file rejected: YAML syntax or schema violation
//	           Action: Run "userctl validate" against the file
//	           Patterns: "do not match schema", "failed to parse field rules"
//
// # Database (DB001-DB099)
//
//	DB001 - Connection refused     Patterns: "connection refused"
//	DB002 - Connection reset       Patterns: "connection reset"
//	DB003 - Timeout                Patterns: "timeout"
//
// # Users (USR001-USR099)
//
//	USR001 - User not found        Patterns: "user not found"
//
// # Requests (REQ001-REQ099)
//
//	REQ001 - Request cancelled     Patterns: "context canceled"
//	REQ002 - Request timed out     Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests    Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application log for the
// original error; it is logged with the request id.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first matching pattern wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Column Configuration (COL001)
	// =========================================================================
	{
		pattern: "invalid field rule",
		msg: UserMessage{
			Message: "A field rule is malformed",
			Action:  "Fix the reported rule in the field rules file",
			Code:    "COL001",
		},
	},

	// =========================================================================
	// Field Rules File (RULES001-RULES002)
	// =========================================================================
	{
		pattern: "failed to read field rules",
		msg: UserMessage{
			Message: "The field rules file could not be read",
			Action:  "Check FIELD_RULES_FILE and file permissions",
			Code:    "RULES001",
		},
	},
	{
		pattern: "do not match schema",
		msg: UserMessage{
			Message: "The field rules file is not valid",
			Action:  "Run userctl validate against the file",
			Code:    "RULES002",
		},
	},
	{
		pattern: "failed to parse field rules",
		msg: UserMessage{
			Message: "The field rules file is not valid",
			Action:  "Run userctl validate against the file",
			Code:    "RULES002",
		},
	},

	// =========================================================================
	// Users (USR001)
	// =========================================================================
	{
		pattern: "user not found",
		msg: UserMessage{
			Message: "User not found",
			Action:  "Return to the user list and pick another user",
			Code:    "USR001",
		},
	},

	// =========================================================================
	// Database (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Requests (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again or narrow your search",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when none match.
//
//	err := fmt.Errorf("get user: %w", users.ErrNotFound)
//	msg := MapError(err)
//	// msg.Code == "USR001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message. Error returns
// the user message; errors.Is and errors.As still reach the original.
type UserError struct {
	Err error
	Msg UserMessage
}

// NewUserError wraps err with its mapped message. It returns nil for nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Err: err, Msg: MapError(err)}
}

func (e *UserError) Error() string {
	return e.Msg.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}
