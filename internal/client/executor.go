package client

import (
	"encoding/json"
	"fmt"

	"txkv/internal/commands"
)

// Executor runs one command line and returns the rendered reply.
type Executor interface {
	Execute(line string) (string, error)
	Close() error
}

func parseStatus(reply string) (commands.SessionStatus, error) {
	var status commands.SessionStatus
	if err := json.Unmarshal([]byte(reply), &status); err != nil {
		return status, fmt.Errorf("invalid status reply %q: %w", reply, err)
	}
	return status, nil
}

// fetchStatus asks exec for the session's transaction state.
func fetchStatus(exec Executor) (commands.SessionStatus, error) {
	reply, err := exec.Execute("STATUS")
	if err != nil {
		return commands.SessionStatus{}, err
	}
	return parseStatus(reply)
}
