package commands

import (
	"txkv/internal/common"
	"txkv/internal/datastore"
)

func init() {
	keyValueArgs := []ArgSpec{
		{Name: "key", Type: "string", Required: true, Description: "The key to write"},
		{Name: "value", Type: "string", Required: true, Description: "The value to write"},
	}
	Register("INSERT", keyValueArgs, ensureKeyValue, execInsert)
	Register("UPDATE", keyValueArgs, ensureKeyValue, execUpdate)
}

type KeyValueArgs struct {
	key   string
	value string
}

func ensureKeyValue(cmd *common.Command) (*KeyValueArgs, error) {
	if err := ensureArgCount(cmd, "key", "value"); err != nil {
		return nil, err
	}
	return &KeyValueArgs{key: cmd.Args[0], value: cmd.Args[1]}, nil
}

func execInsert(ds *datastore.Datastore, args *KeyValueArgs) ([]byte, error) {
	return render(ds.Insert(args.key, args.value))
}

func execUpdate(ds *datastore.Datastore, args *KeyValueArgs) ([]byte, error) {
	return render(ds.Update(args.key, args.value))
}
