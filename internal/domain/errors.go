package domain

import "fmt"

// Messages reported for missing registration fields.
const (
	MsgUsernameRequired = "Username is required"
	MsgPasswordRequired = "Password is required"
)

// ValidationError reports client input rejected before any persistence attempt.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps any failure originating from the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
