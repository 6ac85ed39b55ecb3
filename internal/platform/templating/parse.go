// Package templating implements the note-template engine: deriving a field
// schema from a free-text format string, substituting bracket placeholders
// with live patient/session values, and splitting finished notes back into
// labeled sections for display.
package templating

import (
	"regexp"
	"strings"

	"github.com/therascribe/therascribe/internal/model"
)

var placeholderRe = regexp.MustCompile(`\[(.*?)\]`)

// longFormMarkers flag a placeholder as a multi-line field.
var longFormMarkers = []string{"ISSUES", "PLAN", "ASSESSMENT", "STATUS", "COMPLAINT", "HISTORY"}

// ParseFormat scans a format string line by line. A line containing a
// bracket token becomes one field: the label is the text before the first
// colon (trimmed), the placeholder is the token verbatim. Lines without a
// bracket contribute nothing. Field order is first-appearance order.
func ParseFormat(format string) []model.Field {
	var fields []model.Field
	for _, line := range strings.Split(format, "\n") {
		m := placeholderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := strings.TrimSpace(strings.SplitN(line, ":", 2)[0])
		if label == "" {
			continue
		}
		fields = append(fields, model.Field{
			Label:       label,
			Placeholder: m[0],
			Type:        fieldType(m[1]),
		})
	}
	return fields
}

func fieldType(inner string) string {
	if inner == "DATE" {
		return model.FieldDate
	}
	for _, marker := range longFormMarkers {
		if strings.Contains(inner, marker) {
			return model.FieldTextarea
		}
	}
	return model.FieldText
}

// NormalizeStructure guards against hand-authored or corrupted templates
// whose schema is empty: rather than rejecting the template (which would
// block the clinician from entering notes), it degrades to a single
// free-text field named "Content".
func NormalizeStructure(t *model.Template) model.TemplateStructure {
	if len(t.Structure.Fields) > 0 {
		return t.Structure
	}
	if fields := ParseFormat(t.Format); len(fields) > 0 {
		return model.TemplateStructure{Fields: fields}
	}
	return model.TemplateStructure{Fields: []model.Field{
		{Label: "Content", Placeholder: "[CONTENT]", Type: model.FieldTextarea},
	}}
}
