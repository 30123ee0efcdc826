package commands

import (
	"encoding/json"

	"txkv/internal/datastore"
)

func init() {
	Register("STATUS", []ArgSpec{}, ensureNoArgs, execStatus)
}

// SessionStatus is the STATUS reply. Clients use it to track the open
// transaction.
type SessionStatus struct {
	InTransaction bool   `json:"inTransaction"`
	TransactionID string `json:"transactionId,omitempty"`
	Pending       int    `json:"pending"`
}

func execStatus(ds *datastore.Datastore, _ *NoArgs) ([]byte, error) {
	return json.Marshal(SessionStatus{
		InTransaction: ds.InTransaction(),
		TransactionID: ds.TransactionID(),
		Pending:       ds.Pending(),
	})
}
