package apply

import "fmt"

// ValidationError is a domain precondition failure. It rolls the transaction
// back like any other error but is surfaced to the requester verbatim.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errDuplicateName(name string) error {
	return &ValidationError{Code: "DUPLICATE_NAME", Message: fmt.Sprintf("An entry named %q already exists", name)}
}

func errDuplicateCode(code string) error {
	return &ValidationError{Code: "DUPLICATE_CODE", Message: fmt.Sprintf("Code %q is already in use", code)}
}

func errEntityNotFound() error {
	return &ValidationError{Code: "NOT_FOUND", Message: "Record not found"}
}

func errBadPayload(reason string) error {
	return &ValidationError{Code: "BAD_PAYLOAD", Message: reason}
}

func errUnsupportedAction(action string) error {
	return &ValidationError{Code: "UNSUPPORTED_ACTION", Message: fmt.Sprintf("Action %q is not supported for this entity", action)}
}
