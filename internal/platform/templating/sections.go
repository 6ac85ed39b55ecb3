package templating

import (
	"regexp"
	"strings"
)

// Section is one labeled block of a finished note.
type Section struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

var (
	soapHeaderRe = regexp.MustCompile(`(?i)\n*(?:SUBJECTIVE|OBJECTIVE|ASSESSMENT|PLAN):\n?`)
	dapHeaderRe  = regexp.MustCompile(`(?i)\n*(?:DATA|ASSESSMENT|PLAN):\n?`)

	soapLabels = []string{"SUBJECTIVE", "OBJECTIVE", "ASSESSMENT", "PLAN"}
	dapLabels  = []string{"DATA", "ASSESSMENT", "PLAN"}
)

// SplitSections splits a finished note body back into the labeled sections
// of its builtin skeleton. This parse is heuristic and lossy on purpose:
// clinicians hand-edit notes, so when the split does not yield the expected
// section count it reports ok=false and the caller renders the whole body
// as one block instead.
func SplitSections(notes, sessionType string) ([]Section, bool) {
	var re *regexp.Regexp
	var labels []string
	switch sessionType {
	case TypeSOAP:
		re, labels = soapHeaderRe, soapLabels
	case TypeDAP:
		re, labels = dapHeaderRe, dapLabels
	default:
		return nil, false
	}

	parts := re.Split(notes, -1)
	// The text before the first header (usually empty) is parts[0].
	if len(parts) < len(labels)+1 {
		return nil, false
	}
	sections := make([]Section, len(labels))
	for i, label := range labels {
		sections[i] = Section{Label: label, Text: strings.TrimRight(parts[i+1], "\n")}
	}
	return sections, true
}

// SectionMap converts split sections into the map persisted alongside the
// flattened note at completion time, so display never has to re-derive
// structure from prose.
func SectionMap(sections []Section) map[string]string {
	m := make(map[string]string, len(sections))
	for _, s := range sections {
		m[s.Label] = s.Text
	}
	return m
}
