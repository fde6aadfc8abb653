// Package session issues the opaque per-visitor token that correlates
// every outbound webhook call for one browser session.
package session

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Manager hands out a stable session token, created lazily on first use
// and never regenerated for the manager's lifetime.
type Manager struct {
	mu    sync.Mutex
	token string

	now  func() time.Time
	rand *rand.Rand
}

// NewManager creates a session manager.
func NewManager() *Manager {
	return &Manager{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Token returns the session token, minting it on first call.
// Format: user_<unix millis>_<9 char base36 suffix>.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		m.token = fmt.Sprintf("user_%d_%s", m.now().UnixMilli(), m.suffix(9))
	}
	return m.token
}

// Reset discards the current token so the next Token call mints a new one.
// Used when the visitor logs out and a fresh correlation id is wanted.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

func (m *Manager) suffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(suffixAlphabet[m.rand.Intn(len(suffixAlphabet))])
	}
	return b.String()
}
