package common

import "fmt"

const (
	MsgKeyNotFound                  = "Key not found"
	MsgKeyAlreadyExists             = "Key already exists"
	MsgTransactionAlreadyInProgress = "Transaction already in progress"
	MsgNoTransactionInProgress      = "No transaction in progress"
)

// Result is the outcome of a datastore or backend operation.
//
// Value is only set by a successful select. Message is only set on
// diagnostic paths.
type Result struct {
	Status  Status
	Message string
	Value   any
}

func OK() Result {
	return Result{Status: StatusOK}
}

func Queued() Result {
	return Result{Status: StatusInTransactionList}
}

func WithValue(value any) Result {
	return Result{Status: StatusOK, Value: value}
}

func Fail(status Status, message string) Result {
	return Result{Status: status, Message: message}
}

// Errorf builds an ERROR result from a formatted failure description.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

func FromError(err error) Result {
	if err == nil {
		return OK()
	}
	return Result{Status: StatusError, Message: err.Error()}
}

func KeyNotFound() Result {
	return Fail(StatusKeyNotFound, MsgKeyNotFound)
}

func KeyAlreadyExists() Result {
	return Fail(StatusKeyAlreadyExists, MsgKeyAlreadyExists)
}

func (r Result) IsSuccessful() bool {
	return r.Status.IsSuccessful()
}

// StringValue returns the payload as a string and whether there was one.
func (r Result) StringValue() (string, bool) {
	s, ok := r.Value.(string)
	return s, ok
}

func (r Result) String() string {
	if r.hasValue() {
		return fmt.Sprint(r.Value)
	}
	if r.Message == "" {
		return fmt.Sprintf("Status: %s", r.Status)
	}
	return fmt.Sprintf("Status: %s, Message: %s", r.Status, r.Message)
}

func (r Result) hasValue() bool {
	switch v := r.Value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}
