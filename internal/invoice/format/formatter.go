// Package format renders human-readable invoice numbers.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DefaultNumberTemplate = "INV-{YYYY}{MM}{DD}-{SEQ6}"

var paddedSeqToken = regexp.MustCompile(`\{SEQ(\d+)\}`)

// Number expands an invoice-number template for the given issue time
// and per-day sequence. Supported tokens: {YYYY} {YY} {MM} {DD} {SEQ}
// and {SEQn} for a zero-padded sequence of width n.
func Number(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	replacer := strings.NewReplacer(
		"{YYYY}", issuedAt.Format("2006"),
		"{YY}", issuedAt.Format("06"),
		"{MM}", issuedAt.Format("01"),
		"{DD}", issuedAt.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	)
	out := replacer.Replace(template)

	out = paddedSeqToken.ReplaceAllStringFunc(out, func(token string) string {
		width, err := strconv.Atoi(paddedSeqToken.FindStringSubmatch(token)[1])
		if err != nil || width <= 0 {
			return token
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice number template: %s", out)
	}
	return out, nil
}
