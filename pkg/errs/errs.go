package errs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Match describes the lookup or create criteria that produced an error,
// e.g. {"userName": "Menci"}.
type Match map[string]interface{}

// NotFoundError reports that a lookup matched no object.
type NotFoundError struct {
	ObjectType string
	Match      Match
}

// NewNotFound creates a NotFoundError for the given object type and criteria.
func NewNotFound(objectType string, match Match) *NotFoundError {
	return &NotFoundError{ObjectType: objectType, Match: match}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.ObjectType, map[string]interface{}(e.Match))
}

// MarshalJSON emits the wire format with the "error" discriminator.
func (e *NotFoundError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error      string `json:"error"`
		ObjectType string `json:"objectType"`
		Match      Match  `json:"match"`
	}{"NotFoundError", e.ObjectType, e.Match})
}

// DuplicateError reports that a create collided with an existing object.
type DuplicateError struct {
	ObjectType string
	Match      Match
}

// NewDuplicate creates a DuplicateError for the given object type and criteria.
func NewDuplicate(objectType string, match Match) *DuplicateError {
	return &DuplicateError{ObjectType: objectType, Match: match}
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists: %v", e.ObjectType, map[string]interface{}(e.Match))
}

// MarshalJSON emits the wire format with the "error" discriminator.
func (e *DuplicateError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error      string `json:"error"`
		ObjectType string `json:"objectType"`
		Match      Match  `json:"match"`
	}{"DuplicateError", e.ObjectType, e.Match})
}

// InvalidInputError reports that a single request field failed validation.
type InvalidInputError struct {
	FieldName string
	Value     interface{}
}

// NewInvalidInput creates an InvalidInputError for the given field and value.
func NewInvalidInput(fieldName string, value interface{}) *InvalidInputError {
	return &InvalidInputError{FieldName: fieldName, Value: value}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.FieldName, e.Value)
}

// MarshalJSON emits the wire format with the "error" discriminator.
func (e *InvalidInputError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error     string      `json:"error"`
		FieldName string      `json:"fieldName"`
		Value     interface{} `json:"value"`
	}{"InvalidInputError", e.FieldName, e.Value})
}

// AuthErrorType enumerates authentication and authorization failures.
type AuthErrorType string

const (
	AlreadyLoggedIn  AuthErrorType = "AlreadyLoggedIn"
	NotLoggedIn      AuthErrorType = "NotLoggedIn"
	PermissionDenied AuthErrorType = "PermissionDenied"
	WrongPassword    AuthErrorType = "WrongPassword"
)

// AuthError reports an action not permitted for the current login state
// or actor.
type AuthError struct {
	Type AuthErrorType
}

// NewAuth creates an AuthError of the given type.
func NewAuth(t AuthErrorType) *AuthError {
	return &AuthError{Type: t}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Type)
}

// MarshalJSON emits the wire format with the "error" discriminator.
func (e *AuthError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error string        `json:"error"`
		Type  AuthErrorType `json:"type"`
	}{"AuthError", e.Type})
}

// Semantic extracts the semantic error kind from err if err is (or wraps)
// one, and nil otherwise.
func Semantic(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup
	}
	var inv *InvalidInputError
	if errors.As(err, &inv) {
		return inv
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsSemantic reports whether err (or anything it wraps) is one of the
// semantic error kinds defined by this package.
func IsSemantic(err error) bool {
	return Semantic(err) != nil
}
