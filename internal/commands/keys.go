package commands

import (
	"encoding/json"
	"sort"

	"txkv/internal/common"
	"txkv/internal/datastore"
)

func init() {
	Register("KEYS", []ArgSpec{
		{Name: "pattern", Type: "regexp", Required: true, Description: "Keys matching from their first character are listed"},
	}, ensureKeys, execKeys)
}

type KeysArgs struct {
	pattern string
}

func ensureKeys(cmd *common.Command) (*KeysArgs, error) {
	if err := ensureArgCount(cmd, "pattern"); err != nil {
		return nil, err
	}
	return &KeysArgs{pattern: cmd.Args[0]}, nil
}

// execKeys answers with a sorted JSON array, or the failing Result.
func execKeys(ds *datastore.Datastore, args *KeysArgs) ([]byte, error) {
	keys, res := ds.Keys(args.pattern)
	if !res.IsSuccessful() {
		return render(res)
	}
	if keys == nil {
		keys = []string{}
	}
	sort.Strings(keys)
	return json.Marshal(keys)
}
