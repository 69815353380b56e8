package bip353

import "strings"

// uriScheme is the required prefix of a BIP-353 payment instruction,
// compared case-insensitively.
const uriScheme = "bitcoin:"

// PaymentType classifies what a payment instruction pays to.
type PaymentType string

const (
	// OnChain is a plain on-chain address URI.
	OnChain PaymentType = "on-chain"
	// Lightning is a BOLT 11 invoice carried in the lightning parameter.
	// Invoices are single-use, so these instructions are not reusable.
	Lightning PaymentType = "lightning"
	// LightningOffer is a BOLT 12 offer carried in the lno parameter.
	LightningOffer PaymentType = "lightning-offer"
	// Unknown is a bitcoin: URI with no recognizable payment target.
	Unknown PaymentType = "unknown"
)

// PaymentInstruction is the parsed form of a bitcoin: URI. The URI field
// always holds the input byte-for-byte; nothing is re-encoded or
// percent-decoded.
type PaymentInstruction struct {
	URI        string
	Type       PaymentType
	Reusable   bool
	Parameters map[string]string
}

// ParseURI parses a bitcoin: URI into a PaymentInstruction.
//
// The query string is everything after the first '?'. It is split on '&',
// and each chunk on its first '='; chunks without '=' are dropped. Keys and
// values are stored verbatim with case preserved, and a later duplicate key
// overwrites an earlier one.
//
// Classification precedence, first match wins:
//
//  1. "lightning" parameter present  -> Lightning, not reusable
//  2. "lno" parameter present        -> LightningOffer, reusable
//  3. non-empty path before the '?'  -> OnChain, reusable
//  4. otherwise                      -> Unknown, reusable
//
// The parameter checks match lowercase keys only; "LiGhTnInG" is stored as
// a parameter but does not classify. No semantic validation of the invoice,
// offer or address is performed.
func ParseURI(uri string) (*PaymentInstruction, error) {
	if len(uri) < len(uriScheme) || !strings.EqualFold(uri[:len(uriScheme)], uriScheme) {
		return nil, newError(KindInvalidRecord, `uri must start with "bitcoin:"`)
	}

	body := uri[len(uriScheme):]
	params := make(map[string]string)
	if i := strings.Index(body, "?"); i >= 0 {
		query := body[i+1:]
		body = body[:i]
		for _, chunk := range strings.Split(query, "&") {
			key, value, ok := strings.Cut(chunk, "=")
			if !ok {
				continue
			}
			params[key] = value
		}
	}

	pi := &PaymentInstruction{
		URI:        uri,
		Type:       Unknown,
		Reusable:   true,
		Parameters: params,
	}

	switch {
	case hasParam(params, "lightning"):
		pi.Type = Lightning
		pi.Reusable = false
	case hasParam(params, "lno"):
		pi.Type = LightningOffer
	case body != "":
		pi.Type = OnChain
	}

	return pi, nil
}

func hasParam(params map[string]string, key string) bool {
	_, ok := params[key]
	return ok
}
