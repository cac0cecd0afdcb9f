package core

// error_messages.go maps technical errors to messages suitable for end users.
//
// Each message carries a code that users can quote to support staff.
// Codes are grouped by category:
//
// # Employee Errors (EMP001-EMP099)
//
//	EMP001 - Employee not found
//	         Action: Check the employee id and try again
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date format detected
//	         Patterns: "invalid date"
//	VAL003 - Required field is empty
//	         Patterns: "required field"
//	VAL004 - Required column is missing from CSV
//	         Patterns: "missing required column"
//	VAL005 - Row is missing columns
//	         Patterns: "too few fields"
//	VAL006 - Some fields are invalid (any validation failure)
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File exceeds maximum size limit
//	          Patterns: "file too large", "request body too large"
//	FILE002 - No file was provided
//	          Patterns: "no file provided", "no such file"
//	FILE003 - The CSV file could not be read (any other parse failure)
//	FILE004 - Quotes in the CSV are unbalanced
//	          Patterns: "extraneous or missing"
//	FILE005 - File is empty
//	          Patterns: "file is empty"
//
// # Resource Errors (RES001-RES099)
//
//	RES001 - Import source not found
//	         Patterns: "resource not found", "nosuchkey"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Too many imports running
//	         Patterns: "too many concurrent imports"
//
// # Database Errors (DB001-DB099)
//
//	DB000 - The database could not complete the request (any storage failure)
//	DB001 - Duplicate key
//	        Patterns: "duplicate key", "unique constraint"
//	DB002 - Constraint violation
//	        Patterns: "not-null constraint", "check constraint"
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	        Patterns: "timeout", "deadline exceeded"
//	DB007 - Deadlock or locked database
//	        Patterns: "deadlock", "database is locked"
//
// ERR000 is returned for anything not listed above.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage contains user-friendly error information.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use M/D/YYYY or D-Mon-YY, for example 5/1/1990 or 3-Mar-85",
			Code:    "VAL001",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure every row has a first and last name",
			Code:    "VAL003",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Include the First name, Last name, Location and Birthday columns",
			Code:    "VAL004",
		},
	},
	{
		pattern: "too few fields",
		msg: UserMessage{
			Message: "A row is missing columns",
			Action:  "Check that every row has a value for each header column",
			Code:    "VAL005",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Attach a CSV file in the \"file\" form field",
			Code:    "FILE002",
		},
	},
	{
		pattern: "extraneous or missing",
		msg: UserMessage{
			Message: "Quotes in the CSV are unbalanced",
			Action:  "Check for stray quote characters in the file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "file is empty",
		msg: UserMessage{
			Message: "File is empty",
			Action:  "Upload a CSV file with a header row and at least one data row",
			Code:    "FILE005",
		},
	},

	// Resource
	{
		pattern: "resource not found",
		msg: UserMessage{
			Message: "Import source not found",
			Action:  "Check the configured import resource name",
			Code:    "RES001",
		},
	},
	{
		pattern: "nosuchkey",
		msg: UserMessage{
			Message: "Import source not found",
			Action:  "Check the configured import resource name",
			Code:    "RES001",
		},
	},

	// Import
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports are running",
			Action:  "Wait a moment and try again",
			Code:    "IMP001",
		},
	},

	// Database
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Review your data for duplicate entries",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Review your data for duplicate entries",
			Code:    "DB001",
		},
	},
	{
		pattern: "not-null constraint",
		msg: UserMessage{
			Message: "A required value was missing",
			Action:  "Ensure every row has a first and last name",
			Code:    "DB002",
		},
	},
	{
		pattern: "check constraint",
		msg: UserMessage{
			Message: "A value was rejected by the database",
			Action:  "Review the data and try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
}

// kindMessages apply when no pattern matches. Order matters: the first kind
// the error matches wins.
var kindMessages = []struct {
	kind error
	msg  UserMessage
}{
	{ErrNotFound, UserMessage{
		Message: "Employee not found",
		Action:  "Check the employee id and try again",
		Code:    "EMP001",
	}},
	{ErrValidation, UserMessage{
		Message: "Some fields are invalid",
		Action:  "Correct the listed fields and try again",
		Code:    "VAL006",
	}},
	{ErrParse, UserMessage{
		Message: "The CSV file could not be read",
		Action:  "Check that the file is a comma-separated file with a header row",
		Code:    "FILE003",
	}},
	{ErrStorage, UserMessage{
		Message: "The database could not complete the request",
		Action:  "Please try again",
		Code:    "DB000",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Patterns are matched case-insensitively against the error text first,
// then the error kind is consulted.
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

	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return km.msg
		}
	}

	return defaultMessage
}

// FormatUserError returns a single-line user message for err.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// the generic ERR000 message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
