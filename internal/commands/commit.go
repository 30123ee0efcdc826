package commands

import "txkv/internal/datastore"

func init() {
	Register("COMMIT", []ArgSpec{}, ensureNoArgs, execCommit)
}

func execCommit(ds *datastore.Datastore, _ *NoArgs) ([]byte, error) {
	return render(ds.Commit())
}
