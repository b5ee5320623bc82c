// Package httpx holds the HTTP client settings shared by the feed, decoder
// and article fetchers.
package httpx

import (
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"EnterpriseRiskNews/internal/ports"
)

// DefaultUserAgents are the browser identities rotated between runs.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:77.0) Gecko/20100101 Firefox/77.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.97 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:77.0) Gecko/20100101 Firefox/77.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.97 Safari/537.36",
}

// Identity holds the user agent used for every request of the current run.
type Identity struct {
	mu      sync.RWMutex
	agents  []string
	current string
	pick    func(n int) int
}

var _ ports.IdentityRotator = (*Identity)(nil)

// NewIdentity picks a random agent from the list; an empty list falls back
// to DefaultUserAgents.
func NewIdentity(agents []string) *Identity {
	return newIdentity(agents, rand.IntN)
}

func newIdentity(agents []string, pick func(int) int) *Identity {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	id := &Identity{agents: append([]string(nil), agents...), pick: pick}
	id.Rotate()
	return id
}

// Rotate selects a new agent and returns it.
func (i *Identity) Rotate() string {
	agent := i.agents[i.pick(len(i.agents))]
	i.mu.Lock()
	i.current = agent
	i.mu.Unlock()
	return agent
}

// UserAgent returns the agent of the current run.
func (i *Identity) UserAgent() string {
	if i == nil {
		return DefaultUserAgents[0]
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// Apply sets the identity headers on an outgoing request.
func (i *Identity) Apply(req *http.Request) {
	req.Header.Set("User-Agent", i.UserAgent())
}

// NewClient builds an HTTP client with a fixed timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
