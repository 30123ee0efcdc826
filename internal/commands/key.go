package commands

import (
	"txkv/internal/common"
	"txkv/internal/datastore"
)

func init() {
	keyArgs := []ArgSpec{
		{Name: "key", Type: "string", Required: true, Description: "The key to act on"},
	}
	Register("SELECT", keyArgs, ensureKey, execSelect)
	Register("DELETE", keyArgs, ensureKey, execDelete)
}

type KeyArgs struct {
	key string
}

func ensureKey(cmd *common.Command) (*KeyArgs, error) {
	if err := ensureArgCount(cmd, "key"); err != nil {
		return nil, err
	}
	return &KeyArgs{key: cmd.Args[0]}, nil
}

func execSelect(ds *datastore.Datastore, args *KeyArgs) ([]byte, error) {
	return render(ds.Select(args.key))
}

func execDelete(ds *datastore.Datastore, args *KeyArgs) ([]byte, error) {
	return render(ds.Delete(args.key))
}
