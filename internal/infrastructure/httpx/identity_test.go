package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRotates(t *testing.T) {
	t.Parallel()

	next := 0
	id := newIdentity([]string{"a", "b", "c"}, func(n int) int {
		v := next % n
		next++
		return v
	})

	assert.Equal(t, "a", id.UserAgent())
	assert.Equal(t, "b", id.Rotate())
	assert.Equal(t, "b", id.UserAgent())
}

func TestIdentityDefaults(t *testing.T) {
	t.Parallel()

	id := NewIdentity(nil)
	assert.Contains(t, DefaultUserAgents, id.UserAgent())

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	id.Apply(req)
	assert.Equal(t, id.UserAgent(), req.Header.Get("User-Agent"))
}

func TestNilIdentityFallsBack(t *testing.T) {
	t.Parallel()

	var id *Identity
	assert.Equal(t, DefaultUserAgents[0], id.UserAgent())
}
