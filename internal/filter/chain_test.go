package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnterpriseRiskNews/internal/domain"
)

func link(u, host string) domain.ResolvedLink {
	return domain.ResolvedLink{URL: u, Domain: host, Status: domain.LinkResolved}
}

func TestEvaluatePasses(t *testing.T) {
	t.Parallel()

	for _, host := range []string{"news.example.com", "mit.edu", "example.org", "example.net", "EXAMPLE.COM"} {
		v := Evaluate(link("https://"+host+"/story", host), "Reuters", NewBlocklist("blockedwire"))
		assert.True(t, v.Pass, host)
		assert.Empty(t, v.Reason)
	}
}

func TestEvaluateRejectsExtensionRegardlessOfOtherFields(t *testing.T) {
	t.Parallel()

	blocked := NewBlocklist("blockedwire")
	for _, source := range []string{"reuters", "blockedwire"} {
		for _, u := range []string{"https://x.biz/a", "https://x.biz/en/a"} {
			v := Evaluate(link(u, "x.biz"), source, blocked)
			assert.False(t, v.Pass)
			assert.Equal(t, domain.RejectInvalidDomainExtension, v.Reason)
		}
	}
}

func TestEvaluateRejectsBlockedSource(t *testing.T) {
	t.Parallel()

	blocked := NewBlocklist(" BlockedWire ")

	v := Evaluate(link("https://news.example.com/a", "news.example.com"), "  blockedwire", blocked)
	assert.False(t, v.Pass)
	assert.Equal(t, domain.RejectBlockedSource, v.Reason)

	// Locale marker present too: source check comes first.
	v = Evaluate(link("https://news.example.com/en/a", "news.example.com"), "BLOCKEDWIRE", blocked)
	assert.Equal(t, domain.RejectBlockedSource, v.Reason)
}

func TestEvaluateRejectsLocaleMarker(t *testing.T) {
	t.Parallel()

	v := Evaluate(link("https://example.com/en/story", "example.com"), "reuters", nil)
	assert.False(t, v.Pass)
	assert.Equal(t, domain.RejectLocaleMarker, v.Reason)

	// Only the literal path segment marker counts.
	v = Evaluate(link("https://example.com/english/story", "example.com"), "reuters", nil)
	assert.True(t, v.Pass)
}

func TestChainUsesItsBlocklist(t *testing.T) {
	t.Parallel()

	c := NewChain(NewBlocklist("tabloid"))
	v := c.Evaluate(link("https://example.com/a", "example.com"), "Tabloid")
	assert.Equal(t, domain.RejectBlockedSource, v.Reason)
}

func TestReadBlocklistSkipsHeaderAndBlanks(t *testing.T) {
	t.Parallel()

	list, err := ReadBlocklist(strings.NewReader("SOURCE,NOTE\nBlockedWire,spam\n\n  Tabloid Daily ,\n,\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Contains("blockedwire"))
	assert.True(t, list.Contains("TABLOID DAILY"))
	assert.False(t, list.Contains("SOURCE"))
}

func TestLoadBlocklistMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	list, err := LoadBlocklist(filepath.Join(t.TempDir(), "missing.csv"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
}

func TestLoadBlocklistFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "filter_out_sources.csv")
	require.NoError(t, os.WriteFile(path, []byte("source\nBlockedWire\n"), 0o600))

	list, err := LoadBlocklist(path, nil)
	require.NoError(t, err)
	assert.True(t, list.Contains("blockedwire"))
}
