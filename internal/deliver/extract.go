package deliver

import (
	"strings"

	"github.com/themadorg/maildrop/internal/decode"
)

// Header sources a delivery candidate can come from.
const (
	SourceTo          = "to"
	SourceCc          = "cc"
	SourceBcc         = "bcc"
	SourceDeliveredTo = "delivered-to"
	SourceXOriginalTo = "x-original-to"
)

// Candidate is one normalized address that may identify a local account,
// together with the header it was found in.
type Candidate struct {
	Address string
	Source  string
}

// Candidates collects delivery candidates from all recipient-bearing headers
// of a decoded message. Addresses are lower-cased and trimmed, and the result
// contains each address at most once no matter how many headers named it
// (the first source seen wins).
func Candidates(msg *decode.Message) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})

	add := func(addr, source string) {
		addr = Normalize(addr)
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, Candidate{Address: addr, Source: source})
	}

	for _, a := range msg.To {
		add(a, SourceTo)
	}
	for _, a := range msg.Cc {
		add(a, SourceCc)
	}
	for _, a := range msg.Bcc {
		add(a, SourceBcc)
	}
	add(msg.DeliveredTo, SourceDeliveredTo)
	add(msg.XOriginalTo, SourceXOriginalTo)

	return out
}

// Normalize canonicalizes an address for directory lookup.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
