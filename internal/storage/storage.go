package storage

// KV is the durable local key-value storage the storefront persists
// into: the cart under a fixed global key, presets and cards namespaced
// per user. Implementations are expected to be last-writer-wins; there
// is no cross-process coordination.
type KV interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
