// Package dnsresolver provides DNSSEC-validated TXT record lookups for
// BIP-353 resolution. Queries go to a validating recursive resolver with
// the DO and AD bits set, and a response is only trusted when the resolver
// reports it as authenticated.
package dnsresolver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/multierr"
)

var (
	// ErrNoRecords is returned when the name does not exist or carries no
	// TXT records.
	ErrNoRecords = errors.New("no records found")
	// ErrEmptyMsg is returned when the DNS response message is empty.
	ErrEmptyMsg = errors.New("empty message")
	// ErrEmptyName is returned when an empty lookup name is provided.
	ErrEmptyName = errors.New("empty lookup name")
	// ErrNotAuthentic is returned when the upstream resolver did not mark
	// the response as DNSSEC-authenticated. Unvalidated data is never
	// returned to the caller.
	ErrNotAuthentic = errors.New("response not DNSSEC authenticated")
	// ErrServerFailure is returned on SERVFAIL, which validating resolvers
	// also use for bogus DNSSEC chains.
	ErrServerFailure = errors.New("server failure")
	// ErrRefused is returned when the resolver refuses the query.
	ErrRefused = errors.New("query refused")
)

var _defaultResolver = "1.1.1.1:53"

// udpBufferSize is advertised via EDNS0; DNSSEC-bearing responses do not
// fit in the classic 512-byte limit.
const udpBufferSize = 4096

var _ TXTLookuper = (*Client)(nil)

// TXTLookuper defines the interface for TXT record lookups.
type TXTLookuper interface {
	// LookupTXT resolves name to its TXT records. Each element of the
	// result holds the ordered character-string segments of one record.
	LookupTXT(ctx context.Context, name string) ([][]string, error)
}

// Exchanger defines the interface for DNS message exchange.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, a string) (r *dns.Msg, rtt time.Duration, err error)
}

// Client implements the TXTLookuper interface against one or more
// validating recursive resolvers.
type Client struct {
	Client    Exchanger
	Timeout   time.Duration
	Resolvers []string
	Retries   uint
}

// Opt is a function option for configuring the Client.
type Opt func(r *Client)

// New creates a new Client with the given timeout and optional
// configurations. The returned Client is ready to use for TXT lookups.
func New(timeout time.Duration, opts ...Opt) *Client {
	res := &Client{
		Client: &dns.Client{
			Timeout: timeout,
		},
		Timeout: timeout,
	}

	for _, o := range opts {
		o(res)
	}

	return res
}

// WithResolvers returns an option to set custom DNS resolvers.
// If not provided, the default resolver (1.1.1.1:53) will be used.
// Resolvers must perform DNSSEC validation; the client refuses responses
// without the AD flag.
func WithResolvers(resolvers []string) Opt {
	return func(r *Client) {
		r.Resolvers = resolvers
	}
}

// WithTimeout returns an option to set a custom timeout for DNS queries.
// This overrides the timeout provided to New.
func WithTimeout(timeout time.Duration) Opt {
	return func(r *Client) {
		r.Timeout = timeout
	}
}

// WithRetries returns an option to set how many additional attempts are
// made after a failed exchange.
func WithRetries(retries uint) Opt {
	return func(r *Client) {
		r.Retries = retries
	}
}

// LookupTXT resolves name to its TXT records.
//
// Transport errors are retried up to Retries additional times with the
// per-attempt errors aggregated. Response-level failures (NXDOMAIN,
// SERVFAIL, missing AD flag) are terminal: retrying cannot change what the
// zone serves or whether it validates.
func (r *Client) LookupTXT(ctx context.Context, name string) ([][]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var errs error
	for attempt := uint(0); attempt <= r.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, multierr.Append(errs, err)
		}

		// Fresh request each attempt: ExchangeContext mutates *dns.Msg
		req := &dns.Msg{}
		req.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
		req.SetEdns0(udpBufferSize, true)
		req.AuthenticatedData = true

		resp, _, err := r.Client.ExchangeContext(ctx, req, r.getResolver())
		if err != nil {
			errs = multierr.Append(errs, err)
			continue // retry
		}
		return parseTXT(resp)
	}

	return nil, fmt.Errorf("txt lookup for %q: %w", name, errs)
}

// parseTXT checks the response for failure codes and authentication, then
// collects the TXT records from the answer section.
func parseTXT(resp *dns.Msg) ([][]string, error) {
	if resp == nil {
		return nil, ErrEmptyMsg
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fmt.Errorf("%w: NXDOMAIN", ErrNoRecords)
	case dns.RcodeServerFailure:
		return nil, ErrServerFailure
	case dns.RcodeRefused:
		return nil, ErrRefused
	default:
		return nil, fmt.Errorf("unexpected rcode %s", dns.RcodeToString[resp.Rcode])
	}

	if !resp.AuthenticatedData {
		return nil, ErrNotAuthentic
	}

	var records [][]string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			records = append(records, append([]string(nil), txt.Txt...))
		}
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	return records, nil
}

// getResolver returns a random resolver from the list of resolvers.
func (r *Client) getResolver() string {
	if len(r.Resolvers) == 0 {
		return _defaultResolver
	}

	// Use crypto/rand for secure random selection
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(r.Resolvers))))
	if err != nil {
		// Fall back to first resolver on error
		return r.Resolvers[0]
	}

	return r.Resolvers[n.Int64()]
}
