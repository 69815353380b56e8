// Package bip353 resolves human-readable Bitcoin payment addresses
// (user@domain, optionally prefixed with ₿) into structured payment
// instructions via DNS TXT records, per BIP-353.
//
// Resolution queries TXT records at user.user._bitcoin-payment.domain
// through a DNSSEC-validating DNS client and requires exactly one
// bitcoin: URI among the returned records.
package bip353

import (
	"context"
	"fmt"
	"strings"
)

// TXTLookuper is the DNS capability the resolver depends on. Each element
// of the result is one TXT record, given as its ordered character-string
// segments. Implementations must validate DNSSEC and fail closed: a lookup
// that cannot be cryptographically validated returns an error, never
// unvalidated data.
type TXTLookuper interface {
	LookupTXT(ctx context.Context, name string) ([][]string, error)
}

// Resolver resolves BIP-353 addresses. It holds no per-call state and is
// safe for concurrent use.
type Resolver struct {
	dns TXTLookuper
}

// NewResolver returns a Resolver backed by the given DNS client.
func NewResolver(dns TXTLookuper) *Resolver {
	return &Resolver{dns: dns}
}

// Resolve looks up the payment instruction for user at domain.
//
// The segments of each TXT record are concatenated in order into a single
// candidate string; segments are never treated as independent candidates.
// Candidates whose trimmed value starts with "bitcoin:" (case-insensitive)
// are kept, and exactly one must remain: zero or multiple candidates is an
// invalid-record error. The survivor is handed to ParseURI unmodified.
func (r *Resolver) Resolve(ctx context.Context, user, domain string) (*PaymentInstruction, error) {
	name := fmt.Sprintf("%s.user._bitcoin-payment.%s", user, domain)

	records, err := r.dns.LookupTXT(ctx, name)
	if err != nil {
		return nil, &Error{Kind: KindDNS, Msg: err.Error(), Err: err}
	}

	var candidates []string
	for _, segments := range records {
		joined := strings.Join(segments, "")
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(joined)), uriScheme) {
			candidates = append(candidates, joined)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, newError(KindInvalidRecord, "no bitcoin uri found")
	case 1:
		return ParseURI(candidates[0])
	default:
		return nil, newError(KindInvalidRecord, "multiple bitcoin uris found")
	}
}

// ResolveAddress parses a human-readable address and resolves it.
func (r *Resolver) ResolveAddress(ctx context.Context, raw string) (*PaymentInstruction, error) {
	user, domain, err := ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, user, domain)
}
