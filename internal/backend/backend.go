// Package backend defines the storage capability consumed by the datastore
// and the engines that provide it.
//
// A backend knows nothing about transactions. It upserts, reads, deletes and
// lists string keys, reporting medium failures as ERROR results.
package backend

import (
	"errors"
	"fmt"

	"txkv/internal/common"
)

type Backend interface {
	// Set upserts the key. It only fails when the medium fails.
	Set(key, value string) common.Result
	// Get returns the stored value. A missing key is reported with
	// found == false and an OK result.
	Get(key string) (value string, found bool, res common.Result)
	// Delete returns KEY_NOT_FOUND when the key does not exist.
	Delete(key string) common.Result
	// Keys returns every stored key in no particular order.
	Keys() ([]string, common.Result)
}

// ErrNotFound is returned by engine callbacks to signal a missing key.
var ErrNotFound = errors.New("key not found")

// Guard runs fn and turns its error, or a panic raised inside it, into a
// result. ErrNotFound becomes KEY_NOT_FOUND, anything else becomes ERROR.
func Guard(fn func() error) (res common.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = common.FromError(panicError(r))
		}
	}()

	err := fn()
	switch {
	case err == nil:
		return common.OK()
	case errors.Is(err, ErrNotFound):
		return common.KeyNotFound()
	default:
		return common.FromError(err)
	}
}

// GuardGet is Guard for reads. ErrNotFound is absence, not a failure.
func GuardGet(fn func() (string, error)) (value string, found bool, res common.Result) {
	defer func() {
		if r := recover(); r != nil {
			value, found, res = "", false, common.FromError(panicError(r))
		}
	}()

	value, err := fn()
	switch {
	case err == nil:
		return value, true, common.OK()
	case errors.Is(err, ErrNotFound):
		return "", false, common.OK()
	default:
		return "", false, common.FromError(err)
	}
}

func GuardKeys(fn func() ([]string, error)) (keys []string, res common.Result) {
	defer func() {
		if r := recover(); r != nil {
			keys, res = nil, common.FromError(panicError(r))
		}
	}()

	keys, err := fn()
	if err != nil {
		return nil, common.FromError(err)
	}
	return keys, common.OK()
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
