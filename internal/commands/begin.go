package commands

import (
	"txkv/internal/common"
	"txkv/internal/datastore"
)

func init() {
	Register("BEGIN", []ArgSpec{}, ensureNoArgs, execBegin)
}

type NoArgs struct{}

func ensureNoArgs(cmd *common.Command) (*NoArgs, error) {
	if err := ensureArgCount(cmd); err != nil {
		return nil, err
	}
	return &NoArgs{}, nil
}

func execBegin(ds *datastore.Datastore, _ *NoArgs) ([]byte, error) {
	return render(ds.Begin())
}
