package bridge

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/satori/go.uuid"

	"github.com/foundationdevices/passport-ur/decoder"
	"github.com/foundationdevices/passport-ur/encoder"
	"github.com/foundationdevices/passport-ur/urerr"
)

// maxConcurrentSessions bounds how many in-flight device transfers the
// bridge holds at once. It is an LRU, not a hard cap with rejection,
// because a host application that opens many short-lived sessions (one
// per scan attempt) should not need to explicitly close each one - the
// oldest idle session is simply evicted.
const maxConcurrentSessions = 64

// deviceSession pairs one encoder and one decoder session under a single
// id, the unit the HTTP API operates on. Direction is determined by which
// half the caller drives - a session importing a PSBT from camera input
// uses only the decoder, one exporting a signed transaction uses only the
// encoder.
type deviceSession struct {
	mu sync.Mutex

	ID       string
	URType   string
	Encoder  *encoder.Session
	Decoder  *decoder.Session
}

// SessionManager owns the bridge's in-memory set of active transfers. It
// is the generalization of the teacher's single EnclaveClientI instance
// to "many concurrent device conversations", since unlike krd this bridge
// is not limited to exactly one paired phone.
type SessionManager struct {
	cache *lru.Cache
}

// NewSessionManager constructs a manager bounded to maxConcurrentSessions
// entries.
func NewSessionManager() (*SessionManager, error) {
	cache, err := lru.New(maxConcurrentSessions)
	if err != nil {
		return nil, err
	}
	return &SessionManager{cache: cache}, nil
}

// Create allocates a new session id and registers an empty session under
// it.
func (m *SessionManager) Create() *deviceSession {
	id := uuid.NewV4().String()
	s := &deviceSession{ID: id, Encoder: encoder.New(), Decoder: decoder.New()}
	m.cache.Add(id, s)
	return s
}

// Get returns the session for id, or an Unsupported-kind error if it is
// unknown or was evicted.
func (m *SessionManager) Get(id string) (*deviceSession, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, urerr.New(urerr.Unsupported, "no bridge session with that id (it may have been evicted)")
	}
	return v.(*deviceSession), nil
}

// Delete removes a session, releasing its encoder/decoder buffers.
func (m *SessionManager) Delete(id string) {
	m.cache.Remove(id)
}

func (s *deviceSession) lock() {
	s.mu.Lock()
}

func (s *deviceSession) unlock() {
	s.mu.Unlock()
}
