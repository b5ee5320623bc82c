// Package resolver maps obfuscated feed links onto canonical destination
// URLs.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/ports"
)

// Resolver decodes feed links, optionally through a cache.
type Resolver struct {
	decoder ports.LinkDecoder
	cache   ports.LinkCache
	logger  *slog.Logger
}

var _ ports.LinkResolver = (*Resolver)(nil)

// New wires the decoding capability; cache may be nil.
func New(decoder ports.LinkDecoder, cache ports.LinkCache, log *slog.Logger) *Resolver {
	return &Resolver{decoder: decoder, cache: cache, logger: log}
}

// Resolve returns the canonical link or a *domain.DecodeFailure. Context
// cancellation is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, obfuscated string) (domain.ResolvedLink, error) {
	if decoded, ok := r.cached(ctx, obfuscated); ok {
		if link, err := canonicalize(obfuscated, decoded); err == nil {
			return link, nil
		}
	}

	res, err := r.decoder.Decode(ctx, obfuscated)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ResolvedLink{Status: domain.LinkDecodeFailed}, ctxErr
		}
		return failedLink(), &domain.DecodeFailure{Link: obfuscated, Message: err.Error()}
	}
	if !res.Status {
		return failedLink(), &domain.DecodeFailure{Link: obfuscated, Message: res.Message}
	}

	link, err := canonicalize(obfuscated, res.URL)
	if err != nil {
		return failedLink(), err
	}

	r.store(ctx, obfuscated, link.URL)
	return link, nil
}

func (r *Resolver) cached(ctx context.Context, obfuscated string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	decoded, ok, err := r.cache.Get(ctx, obfuscated)
	if err != nil {
		r.warn("link cache lookup failed", "error", err)
		return "", false
	}
	return decoded, ok
}

func (r *Resolver) store(ctx context.Context, obfuscated, decoded string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, obfuscated, decoded); err != nil {
		r.warn("link cache store failed", "error", err)
	}
}

// canonicalize trims and lower-cases the decoded URL and derives its host.
func canonicalize(obfuscated, decoded string) (domain.ResolvedLink, error) {
	canonical := strings.ToLower(strings.TrimSpace(decoded))

	parsed, err := url.Parse(canonical)
	if err != nil {
		return failedLink(), &domain.DecodeFailure{Link: obfuscated, Message: fmt.Sprintf("unparseable url %q", canonical)}
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return failedLink(), &domain.DecodeFailure{Link: obfuscated, Message: fmt.Sprintf("url without host %q", canonical)}
	}

	return domain.ResolvedLink{URL: canonical, Domain: host, Status: domain.LinkResolved}, nil
}

func failedLink() domain.ResolvedLink {
	return domain.ResolvedLink{Status: domain.LinkDecodeFailed}
}

func (r *Resolver) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
