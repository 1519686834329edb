package memory

import (
	"time"

	ragmemory "doc-qna-be/pkg/rag/memory"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps per-session conversation windows in process memory.
// Windows expire after an hour of inactivity so abandoned sessions do not pile up.
type SessionRepository struct {
	cache    *cache.Cache
	windowK  int
	humanTag string
	aiTag    string
}

func NewSessionRepository(windowK int, humanTag, aiTag string) *SessionRepository {
	// Default expiration of 1 hour, expired items purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache:    c,
		windowK:  windowK,
		humanTag: humanTag,
		aiTag:    aiTag,
	}
}

// GetOrCreate returns the window for a session, creating an empty one on first
// use. Every access refreshes the expiration so active sessions stay warm.
func (r *SessionRepository) GetOrCreate(sessionID string) *ragmemory.Window {
	if x, found := r.cache.Get(sessionID); found {
		window := x.(*ragmemory.Window)
		r.cache.Set(sessionID, window, cache.DefaultExpiration)
		return window
	}
	window := ragmemory.NewWindow(r.windowK, r.humanTag, r.aiTag)
	r.cache.Set(sessionID, window, cache.DefaultExpiration)
	return window
}

func (r *SessionRepository) Get(sessionID string) (*ragmemory.Window, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*ragmemory.Window), true
	}
	return nil, false
}

func (r *SessionRepository) Save(sessionID string, window *ragmemory.Window) {
	r.cache.Set(sessionID, window, cache.DefaultExpiration)
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
