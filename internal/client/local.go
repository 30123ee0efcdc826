package client

import "txkv/internal/db"

// Local runs commands against an in-process datastore.
type Local struct {
	db *db.DB
}

func NewLocal(database *db.DB) *Local {
	return &Local{db: database}
}

// Execute renders argument errors the way the server does, so the REPL
// treats both executors alike.
func (l *Local) Execute(line string) (string, error) {
	reply, err := l.db.Execute([]byte(line))
	if err != nil {
		return "error: " + err.Error(), nil
	}
	return string(reply), nil
}

func (l *Local) Close() error {
	l.db.Reset()
	return l.db.Close()
}
