package tokenstore

import "sync"

// in-memory revocation list for stub sessions; a real deployment would back
// this with Redis or the DB.

type RevocationList struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: map[string]struct{}{}}
}

func (l *RevocationList) Revoke(jti string) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = struct{}{}
}

func (l *RevocationList) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.revoked[jti]
	return ok
}

var defaultList = NewRevocationList()

// RevokeToken marks a session id revoked on the process-wide list.
func RevokeToken(jti string) { defaultList.Revoke(jti) }

// IsRevoked checks the process-wide list.
func IsRevoked(jti string) bool { return defaultList.IsRevoked(jti) }
