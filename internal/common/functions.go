package common

import farm "github.com/dgryski/go-farm"

// HashKey maps a key onto a shard index space.
func HashKey(key string) uint32 {
	return farm.Fingerprint32([]byte(key))
}
