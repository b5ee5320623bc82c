// Package filter holds the link policy applied between link resolution and
// article extraction.
package filter

import (
	"strings"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/ports"
)

// allowedExtensions are the only domain suffixes that pass the chain.
var allowedExtensions = []string{".com", ".edu", ".org", ".net"}

// localeMarker flags translated or international duplicates in the feed.
const localeMarker = "/en/"

// Chain evaluates domain extension, source block-list and locale marker in
// that order, stopping at the first rejection.
type Chain struct {
	blocked Blocklist
}

var _ ports.LinkFilter = (*Chain)(nil)

// NewChain wires the block-list loaded for the run.
func NewChain(blocked Blocklist) *Chain {
	return &Chain{blocked: blocked}
}

// Evaluate runs the chain against a resolved link and its feed source name.
func (c *Chain) Evaluate(link domain.ResolvedLink, source string) domain.FilterVerdict {
	return Evaluate(link, source, c.blocked)
}

// Evaluate is the stateless form of Chain.Evaluate.
func Evaluate(link domain.ResolvedLink, source string, blocked Blocklist) domain.FilterVerdict {
	if !hasAllowedExtension(link.Domain) {
		return reject(domain.RejectInvalidDomainExtension)
	}
	if blocked.Contains(source) {
		return reject(domain.RejectBlockedSource)
	}
	if strings.Contains(link.URL, localeMarker) {
		return reject(domain.RejectLocaleMarker)
	}
	return domain.FilterVerdict{Pass: true}
}

func hasAllowedExtension(host string) bool {
	host = strings.ToLower(host)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(host, ext) {
			return true
		}
	}
	return false
}

func reject(reason domain.RejectReason) domain.FilterVerdict {
	return domain.FilterVerdict{Pass: false, Reason: reason}
}
