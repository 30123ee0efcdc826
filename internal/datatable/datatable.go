package datatable

type DataTable interface {
	Get(key string) (string, bool)
	Put(key string, value string)
	// Delete reports whether the key was present.
	Delete(key string) bool
	Size() int
	Keys() []string
}
