package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/ports"
)

type stubDecoder struct {
	result ports.DecodeResult
	err    error
	calls  int
}

func (s *stubDecoder) Decode(ctx context.Context, obfuscated string) (ports.DecodeResult, error) {
	s.calls++
	return s.result, s.err
}

type memoryCache struct {
	data   map[string]string
	getErr error
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func TestResolveCanonicalizes(t *testing.T) {
	t.Parallel()

	dec := &stubDecoder{result: ports.DecodeResult{Status: true, URL: "  HTTPS://News.Example.COM:443/Story/ABC  "}}
	r := New(dec, nil, nil)

	link, err := r.Resolve(context.Background(), "obf")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkResolved, link.Status)
	assert.Equal(t, "https://news.example.com:443/story/abc", link.URL)
	assert.Equal(t, "news.example.com", link.Domain)
}

func TestResolveDecodeFailure(t *testing.T) {
	t.Parallel()

	dec := &stubDecoder{result: ports.DecodeResult{Status: false, Message: "rate limited"}}
	r := New(dec, nil, nil)

	link, err := r.Resolve(context.Background(), "obf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.Equal(t, domain.LinkDecodeFailed, link.Status)

	var failure *domain.DecodeFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "rate limited", failure.Message)
}

func TestResolveDecoderErrorIsDecodeFailure(t *testing.T) {
	t.Parallel()

	r := New(&stubDecoder{err: errors.New("boom")}, nil, nil)

	_, err := r.Resolve(context.Background(), "obf")
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestResolveCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(&stubDecoder{err: context.Canceled}, nil, nil)
	_, err := r.Resolve(ctx, "obf")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrDecode)
}

func TestResolveRejectsHostlessURL(t *testing.T) {
	t.Parallel()

	r := New(&stubDecoder{result: ports.DecodeResult{Status: true, URL: "/relative/path"}}, nil, nil)

	_, err := r.Resolve(context.Background(), "obf")
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestResolveUsesCache(t *testing.T) {
	t.Parallel()

	cache := &memoryCache{data: map[string]string{}}
	dec := &stubDecoder{result: ports.DecodeResult{Status: true, URL: "https://Example.org/A"}}
	r := New(dec, cache, nil)

	first, err := r.Resolve(context.Background(), "obf")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "obf")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, dec.calls)
	assert.Equal(t, "https://example.org/a", cache.data["obf"])
}

func TestResolveIgnoresCacheErrors(t *testing.T) {
	t.Parallel()

	cache := &memoryCache{data: map[string]string{}, getErr: errors.New("redis down")}
	dec := &stubDecoder{result: ports.DecodeResult{Status: true, URL: "https://example.org/a"}}
	r := New(dec, cache, nil)

	link, err := r.Resolve(context.Background(), "obf")
	require.NoError(t, err)
	assert.Equal(t, "example.org", link.Domain)
	assert.Equal(t, 1, dec.calls)
}
