package common

// OperationKind tags a queued operation and a logged change.
type OperationKind uint8

const (
	OpInsert OperationKind = iota
	OpUpdate
	OpSelect
	OpDelete
)

func (k OperationKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpSelect:
		return "select"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutates reports whether applying the operation changes the backend.
func (k OperationKind) Mutates() bool {
	return k != OpSelect
}
