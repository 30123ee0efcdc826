package commands

import "txkv/internal/datastore"

func init() {
	Register("ROLLBACK", []ArgSpec{}, ensureNoArgs, execRollback)
}

func execRollback(ds *datastore.Datastore, _ *NoArgs) ([]byte, error) {
	return render(ds.Rollback())
}
