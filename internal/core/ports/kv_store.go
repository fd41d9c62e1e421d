package ports

import "context"

// Storage keys shared by every client of the key-value adapter.
const (
	KeyToken        = "token"
	KeyUser         = "user"
	KeyUsers        = "mockUsers"
	KeyNeeds        = "mockNeedList"
	KeyServiceSelfs = "mockServiceSelfList"
)

// KVStore is the flat string-blob store all persistent state lives in.
// Get reports ok=false for a missing key; it is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by adapters backed by a remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}
