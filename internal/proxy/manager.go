package proxy

import (
	"math/rand/v2"
	"sync"
)

// DefaultUserAgents is used when no user agents are configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Manager handles the rotation of proxies and user agents across browser sessions.
type Manager struct {
	proxies    []string
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
}

func NewManager(proxies, userAgents []string) *Manager {
	if len(userAgents) == 0 {
		userAgents = DefaultUserAgents
	}
	return &Manager{
		proxies:    append([]string(nil), proxies...),
		userAgents: append([]string(nil), userAgents...),
	}
}

// GetProxy returns a proxy URL from the list, rotating sequentially.
// An empty string means no proxy.
func (m *Manager) GetProxy() string {
	if len(m.proxies) == 0 {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	return m.userAgents[rand.IntN(len(m.userAgents))]
}
