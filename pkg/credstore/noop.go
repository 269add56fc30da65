package credstore

// NoopStore is the Store for non-interactive execution contexts where no
// persistent storage medium is available. Get always reports absence;
// Set and Remove are silently ignored.
type NoopStore struct{}

// NewNoopStore creates a store that persists nothing.
func NewNoopStore() NoopStore { return NoopStore{} }

// Get always returns absent.
func (NoopStore) Get(string) (string, bool) { return "", false }

// Set is ignored.
func (NoopStore) Set(string, string) {}

// Remove is ignored.
func (NoopStore) Remove(string) {}
