package deliver

import (
	"testing"

	"github.com/themadorg/maildrop/internal/decode"
)

func TestCandidatesDeduplicateAcrossSources(t *testing.T) {
	t.Parallel()

	msg := &decode.Message{
		To:          []string{"A@x.com ", "b@x.com"},
		Cc:          []string{"b@x.com"},
		DeliveredTo: "a@x.com",
	}

	cands := Candidates(msg)
	if len(cands) != 2 {
		t.Fatalf("candidates: got %d (%v), want 2", len(cands), cands)
	}

	byAddr := make(map[string]string)
	for _, c := range cands {
		byAddr[c.Address] = c.Source
	}
	if src, ok := byAddr["a@x.com"]; !ok || src != SourceTo {
		t.Errorf("a@x.com: got source %q, want %q", src, SourceTo)
	}
	if src, ok := byAddr["b@x.com"]; !ok || src != SourceTo {
		t.Errorf("b@x.com: got source %q, want %q", src, SourceTo)
	}
}

func TestCandidatesSources(t *testing.T) {
	t.Parallel()

	msg := &decode.Message{
		Bcc:         []string{"hidden@x.com"},
		XOriginalTo: "orig@x.com",
	}

	cands := Candidates(msg)
	if len(cands) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(cands))
	}
	if cands[0].Source != SourceBcc || cands[1].Source != SourceXOriginalTo {
		t.Errorf("sources: got %q, %q", cands[0].Source, cands[1].Source)
	}
}

func TestCandidatesEmpty(t *testing.T) {
	t.Parallel()

	if cands := Candidates(&decode.Message{DeliveredTo: "   "}); len(cands) != 0 {
		t.Errorf("candidates: got %v, want none", cands)
	}
}
