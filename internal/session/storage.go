package session

// Storage is the durable client-side store for the two session entries:
// the credential token and the JSON-serialized user record. Production
// backs this with HttpOnly cookies; tests use MemoryStorage.
type Storage interface {
	Token() (string, bool)
	UserRecord() ([]byte, bool)
	// WriteSession persists both entries together. Implementations must not
	// leave one entry written without the other.
	WriteSession(token string, userRecord []byte) error
	Clear()
}

// MemoryStorage is an in-process Storage, used by tests and by callers that
// have no durable medium.
type MemoryStorage struct {
	token string
	user  []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Token() (string, bool) {
	return m.token, m.token != ""
}

func (m *MemoryStorage) UserRecord() ([]byte, bool) {
	return m.user, m.user != nil
}

func (m *MemoryStorage) WriteSession(token string, userRecord []byte) error {
	m.token = token
	m.user = userRecord
	return nil
}

func (m *MemoryStorage) Clear() {
	m.token = ""
	m.user = nil
}
