package templating

import (
	"strconv"
	"strings"
	"time"

	"github.com/therascribe/therascribe/internal/model"
)

// Builtin session types that have a fixed section skeleton instead of a
// stored template.
const (
	TypeSOAP = "soap"
	TypeDAP  = "dap"
)

const (
	soapSkeleton = "SUBJECTIVE:\n\n\nOBJECTIVE:\n\n\nASSESSMENT:\n\n\nPLAN:\n"
	dapSkeleton  = "DATA:\n\n\nASSESSMENT:\n\n\nPLAN:\n"
)

// BuiltinSkeleton returns the fixed empty-bodied section skeleton for a
// builtin session type, or "" for anything else. No placeholder
// substitution applies: there is no stored template behind these.
func BuiltinSkeleton(sessionType string) string {
	switch sessionType {
	case TypeSOAP:
		return soapSkeleton
	case TypeDAP:
		return dapSkeleton
	default:
		return ""
	}
}

// Render substitutes the known placeholders in a template format with live
// values computed at render time. Unknown bracket tokens are left verbatim:
// a template author's own tokens are filled in later by the clinician, not
// treated as errors.
//
// END TIME and LENGTH render empty — they are only known when the session
// ends.
func Render(format string, patient *model.Patient, now time.Time) string {
	date := now.Format("Jan 2, 2006")
	startTime := now.Format("3:04 PM")

	out := format
	out = strings.ReplaceAll(out, "[DATE]", date)
	out = strings.ReplaceAll(out, "[START TIME]", startTime)
	out = strings.ReplaceAll(out, "[END TIME]", "")
	out = strings.ReplaceAll(out, "[LENGTH]", "")

	if patient != nil {
		out = strings.ReplaceAll(out, "[NAME]", patient.Name)
		out = strings.ReplaceAll(out, "[CLIENT NAME]", patient.Name)
		out = strings.ReplaceAll(out, "[DOB]", DOBFromAge(patient.Age, now))
		out = strings.ReplaceAll(out, "[AGE]", strconv.Itoa(patient.Age))
		out = strings.ReplaceAll(out, "[GENDER]", patient.Gender)
		out = strings.ReplaceAll(out, "[DIAGNOSIS]", DiagnosisText(patient))
		out = strings.ReplaceAll(out, "[ICD-10]", patient.ICDCode)
	}
	return out
}

// DiagnosisText resolves the display text for a patient's diagnosis with a
// fixed precedence: the diagnoses list (comma-truncated names joined by
// "; "), then a catalog lookup by legacy ICD code, then the legacy singular
// diagnosis field. The order matters — it disambiguates old single-
// diagnosis records from new multi-diagnosis ones, and must not change.
func DiagnosisText(patient *model.Patient) string {
	if len(patient.Diagnoses) > 0 {
		names := make([]string, 0, len(patient.Diagnoses))
		for _, d := range patient.Diagnoses {
			names = append(names, truncateAtComma(d.Name))
		}
		return strings.Join(names, "; ")
	}
	if patient.ICDCode != "" {
		if name, ok := ICD10Catalog[patient.ICDCode]; ok {
			return name
		}
	}
	return truncateAtComma(patient.Diagnosis)
}

// truncateAtComma keeps the primary condition part of a diagnosis display
// name ("Major depressive disorder, recurrent, moderate" -> "Major
// depressive disorder").
func truncateAtComma(name string) string {
	return strings.TrimSpace(strings.SplitN(name, ",", 2)[0])
}

// DOBFromAge derives a display date of birth from a stored age. The exact
// birthday is not recorded, so the month/day come from the reference date;
// callers use this for display only.
func DOBFromAge(age int, now time.Time) string {
	if age <= 0 {
		return ""
	}
	return now.AddDate(-age, 0, 0).Format("01-02-2006")
}
