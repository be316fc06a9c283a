package sms

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Candidate is a donation extracted from raw notification text.
type Candidate struct {
	Amount        decimal.Decimal
	Name          string
	TransactionID string
}

// FallbackName is used when the notification carries no donor name (the Raast
// TID format never does).
const FallbackName = "JazzCash Donor"

// template couples an extraction regex with the capture-group positions for
// amount, donor name and transaction id (0 = not captured by this template).
type template struct {
	re   *regexp.Regexp
	amt  int
	name int
	tid  int
}

const amountPat = `(\d+[,\d]*(?:\.\d+)?)`

// templates are tried in order; the first match wins, even when a later one
// would capture more fields.
var templates = []template{
	// "Rs. 500 received from Muhammad Ali. Trx ID: JC123456"
	{re: regexp.MustCompile(`(?i)Rs\.?\s*` + amountPat + `\s*(?:received|transferred|sent).*?(?:from|by)\s+([A-Za-z ]+?)[.,]?\s*(?:Trx|Transaction)\s*ID\s*:?\s*([A-Z0-9]+)`), amt: 1, name: 2, tid: 3},
	// "You received Rs.500 from Muhammad Ali (JC123456)"
	{re: regexp.MustCompile(`(?i)received\s*Rs\.?\s*` + amountPat + `\s*from\s+([A-Za-z ]+?)\s*\(([A-Z0-9]+)\)`), amt: 1, name: 2, tid: 3},
	// "Transaction of Rs.500 from Muhammad Ali successful. ID: JC123456"
	{re: regexp.MustCompile(`(?i)Transaction\s+of\s+Rs\.?\s*` + amountPat + `\s+from\s+([A-Za-z ]+?)\s+successful\.?\s*ID\s*:?\s*([A-Z0-9]+)`), amt: 1, name: 2, tid: 3},
	// "Rs 10.00 received in your JazzCash Mobile Account:03095877041 via Raast. TID: 704100096110"
	{re: regexp.MustCompile(`(?i)Rs\.?\s*` + amountPat + `\b.*?TID\s*:?\s*(\d+)`), amt: 1, tid: 2},
	// Amount but no id anywhere in the text; the id gets synthesized.
	{re: regexp.MustCompile(`(?i)Rs\.?\s*` + amountPat + `\s*received`), amt: 1},
}

// Extract runs the templates in order against raw notification text and
// returns the first hit, or ErrNoMatch when nothing recognizes it.
func Extract(text string) (Candidate, error) {
	flat := normalize(text)
	for _, t := range templates {
		m := t.re.FindStringSubmatch(flat)
		if m == nil {
			continue
		}
		amt, err := parseAmount(m[t.amt])
		if err != nil {
			continue
		}
		c := Candidate{Amount: amt, Name: FallbackName}
		if t.name > 0 {
			if n := strings.TrimSpace(m[t.name]); n != "" {
				c.Name = n
			}
		}
		if t.tid > 0 {
			c.TransactionID = strings.TrimSpace(m[t.tid])
		} else {
			c.TransactionID = SynthesizeID(flat)
		}
		return c, nil
	}
	return Candidate{}, ErrNoMatch
}

// SynthesizeID derives a stable fallback transaction id from the text itself,
// so redelivery of the same message dedupes instead of double-counting.
func SynthesizeID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "TXN" + strings.ToUpper(hex.EncodeToString(sum[:6]))
}

// parseAmount strips thousands separators and keeps the decimal point.
func parseAmount(found string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(found), ",", "")
	return decimal.NewFromString(s)
}

// normalize collapses whitespace so the templates can span what were line
// breaks in email bodies.
func normalize(t string) string {
	return strings.Join(strings.Fields(t), " ")
}

// Snippet shortens raw text for logging, cutting on a rune boundary so a
// multi-byte character is never split.
func Snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
