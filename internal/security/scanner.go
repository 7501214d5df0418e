package security

import (
	"fmt"
	"regexp"

	"proofguard/internal/proof"
)

// Finding is one sensitive-data detector hit. Findings are advisory signals
// for a human reviewer, not a blocking gate: an empty result means "no
// findings", not "guaranteed clean".
type Finding struct {
	Pattern string `json:"pattern"`
	Field   string `json:"field"`
	Excerpt string `json:"excerpt"`
}

const excerptLimit = 48

var (
	creditCardRe = regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{1,4}\b`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	currencyRe   = regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d{2})?|\b\d[\d,]*(?:\.\d{2})?\s?(?:USD|EUR|GBP)\b`)

	// defaultPhoneRe matches common national formats with an optional
	// country prefix; deployments override it via Config.PhonePattern.
	defaultPhoneRe = regexp.MustCompile(`\b(?:\+\d{1,2}[ .\-]?)?\(?\d{3}\)?[ .\-]?\d{3}[ .\-]?\d{4}\b`)
)

// Scan applies the sensitive-data detectors across the proof's title,
// description, and every string leaf of the metadata attributes, returning
// every match.
func (s *Service) Scan(p *proof.Proof) []Finding {
	detectors := []struct {
		name string
		re   *regexp.Regexp
	}{
		{"credit_card", creditCardRe},
		{"email", emailRe},
		{"phone", s.phoneRe},
		{"currency", currencyRe},
	}

	var findings []Finding
	scanField := func(field, value string) {
		for _, d := range detectors {
			for _, match := range d.re.FindAllString(value, -1) {
				findings = append(findings, Finding{
					Pattern: d.name,
					Field:   field,
					Excerpt: truncate(match, excerptLimit),
				})
				s.metrics.ObserveFinding(d.name)
			}
		}
	}

	scanField("title", p.Title)
	scanField("description", p.Description)
	scanStringLeaves("metadata", p.Metadata.Attributes, scanField)

	return findings
}

// scanStringLeaves walks nested maps and slices, invoking fn on every
// string leaf with a dotted path for the field name.
func scanStringLeaves(path string, value any, fn func(field, value string)) {
	switch v := value.(type) {
	case string:
		fn(path, v)
	case map[string]any:
		for k, child := range v {
			scanStringLeaves(path+"."+k, child, fn)
		}
	case []any:
		for i, child := range v {
			scanStringLeaves(fmt.Sprintf("%s[%d]", path, i), child, fn)
		}
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
