package sms

import (
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func TestExtractRaastTID(t *testing.T) {
	c, err := Extract("Rs 10.00 received in your JazzCash Mobile Account:03095877041 via Raast. TID: 704100096110")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if !c.Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected amount 10.00 got %s", c.Amount)
	}
	if c.TransactionID != "704100096110" {
		t.Fatalf("expected tid 704100096110 got %q", c.TransactionID)
	}
	if c.Name != FallbackName {
		t.Fatalf("expected fallback name got %q", c.Name)
	}
}

func TestExtractNamedTrxID(t *testing.T) {
	c, err := Extract("Rs. 1,500 received from Muhammad Ali. Trx ID: JC123456")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if !c.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("expected amount 1500 (separator stripped) got %s", c.Amount)
	}
	if c.Name != "Muhammad Ali" {
		t.Fatalf("expected name trimmed verbatim got %q", c.Name)
	}
	if c.TransactionID != "JC123456" {
		t.Fatalf("expected tid JC123456 got %q", c.TransactionID)
	}
}

func TestExtractParenthesizedID(t *testing.T) {
	c, err := Extract("You received Rs.500 from Ayesha Khan (JC998877)")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if !c.Amount.Equal(decimal.NewFromInt(500)) || c.Name != "Ayesha Khan" || c.TransactionID != "JC998877" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestExtractTransactionOfPattern(t *testing.T) {
	c, err := Extract("Transaction of Rs.2,000 from Bilal Ahmed successful. ID: TX55001")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if !c.Amount.Equal(decimal.NewFromInt(2000)) || c.Name != "Bilal Ahmed" || c.TransactionID != "TX55001" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestExtractSynthesizedID(t *testing.T) {
	text := "Rs 250 received in your JazzCash account via transfer"
	c, err := Extract(text)
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if c.TransactionID == "" {
		t.Fatalf("expected synthesized tid")
	}
	// Same text must synthesize the same id so redelivery dedupes.
	c2, err := Extract(text)
	if err != nil || c2.TransactionID != c.TransactionID {
		t.Fatalf("synthesized tid not stable: %q vs %q (err=%v)", c.TransactionID, c2.TransactionID, err)
	}
	other, err := Extract("Rs 250 received in your JazzCash account via Raast transfer")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if other.TransactionID == c.TransactionID {
		t.Fatalf("distinct texts must not share a synthesized tid")
	}
}

func TestExtractFirstTemplateWins(t *testing.T) {
	// Matches both the Trx ID template and the TID one; the earlier template
	// must decide.
	c, err := Extract("Rs 300 received from Sana Tariq. Trx ID: JC42 TID: 999999")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if c.TransactionID != "JC42" {
		t.Fatalf("expected first template's tid JC42 got %q", c.TransactionID)
	}
}

func TestExtractNoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"Hello, your OTP is 123456",
		"Your balance is Rs 500",
	} {
		if _, err := Extract(text); err != ErrNoMatch {
			t.Fatalf("expected ErrNoMatch for %q got %v", text, err)
		}
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	if got := Snippet("short", 80); got != "short" {
		t.Fatalf("short text must pass through, got %q", got)
	}
	// max falls inside the two-byte "ó"; the cut must back up to the rune
	// boundary instead of emitting half a sequence.
	got := Snippet("donación recibida", 7)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet is not valid UTF-8: %q", got)
	}
	if got != "donaci…" {
		t.Fatalf("expected cut on rune boundary, got %q", got)
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	c, err := Extract("rs 75.50 RECEIVED in your account. tid: 12345")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if !c.Amount.Equal(decimal.RequireFromString("75.50")) || c.TransactionID != "12345" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}
