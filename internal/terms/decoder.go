// Package terms decodes the enterprise-risk search terms, which are stored as
// integers packing the UTF-8 bytes of the query in little-endian order.
package terms

import (
	"math/big"
	"slices"
	"strings"
	"unicode/utf8"

	"EnterpriseRiskNews/internal/domain"
)

// Decode turns an encoded integer into a search query. It reports false for
// non-numeric or negative input and for bytes that are not valid UTF-8.
func Decode(encoded string) (string, bool) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(encoded), 10)
	if !ok || n.Sign() < 0 {
		return "", false
	}

	// big.Int.Bytes is the minimal big-endian form, ceil(bit_length/8) bytes.
	raw := n.Bytes()
	slices.Reverse(raw)

	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// Encode is the inverse of Decode for strings without trailing NUL bytes.
func Encode(query string) string {
	raw := []byte(query)
	slices.Reverse(raw)
	return new(big.Int).SetBytes(raw).String()
}

// DecodeTerm decodes a stored row into a SearchTerm.
func DecodeTerm(id, encoded string) (domain.SearchTerm, bool) {
	query, ok := Decode(encoded)
	if !ok {
		return domain.SearchTerm{}, false
	}
	return domain.SearchTerm{ID: strings.TrimSpace(id), Query: query}, true
}
