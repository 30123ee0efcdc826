package common

// Status is the outcome code carried by every Result.
type Status uint8

const (
	StatusOK Status = iota
	StatusKeyNotFound
	StatusKeyAlreadyExists
	StatusTransactionAlreadyInProgress
	StatusInTransactionList
	StatusNoTransactionInProgress
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusKeyNotFound:
		return "KEY_NOT_FOUND"
	case StatusKeyAlreadyExists:
		return "KEY_ALREADY_EXISTS"
	case StatusTransactionAlreadyInProgress:
		return "TRANSACTION_ALREADY_IN_PROGRESS"
	case StatusInTransactionList:
		return "IN_TRANSACTION_LIST"
	case StatusNoTransactionInProgress:
		return "NO_TRANSACTION_IN_PROGRESS"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// IsSuccessful reports whether the status counts as success. A queued
// operation is accepted, so IN_TRANSACTION_LIST is successful too.
func (s Status) IsSuccessful() bool {
	return s == StatusOK || s == StatusInTransactionList
}
