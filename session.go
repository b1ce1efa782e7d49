package nedb

import "sync"

// Session is the top-level handle to a set of in-memory databases (spec
// §4.5), replacing a network dial with direct construction since there
// is no server to connect to.
type Session struct {
	mu        sync.Mutex
	databases map[string]*Database
	opts      Options
}

// New constructs a Session with the given default Options, applied to
// every database/collection created without its own override.
func New(opts Options) *Session {
	return &Session{
		databases: map[string]*Database{},
		opts:      opts,
	}
}

// DB returns the named database, creating it on first access.
func (s *Session) DB(name string) *Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db, ok := s.databases[name]; ok {
		return db
	}
	db := NewDatabase(s.opts)
	s.databases[name] = db
	return db
}

// Copy returns a Session sharing the same default Options but an
// independent database set — mirrors mgo's session-copy idiom without a
// connection to share.
func (s *Session) Copy() *Session {
	return New(s.opts)
}

// Close is a no-op retained for API symmetry with network-backed
// sessions; there is no connection to release.
func (s *Session) Close() {}
