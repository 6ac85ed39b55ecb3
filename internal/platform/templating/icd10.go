package templating

// ICD10Catalog maps the ICD-10 codes offered in the diagnosis picker to
// their display names. Used as the middle step of the diagnosis display
// precedence for legacy single-code patients.
var ICD10Catalog = map[string]string{
	"F32.9":  "Major depressive disorder",
	"F33.1":  "Major depressive disorder, recurrent",
	"F41.1":  "Generalized anxiety disorder",
	"F43.10": "Post-traumatic stress disorder",
	"F43.23": "Adjustment disorder",
	"F60.9":  "Personality disorder",
	"F90.9":  "ADHD",
	"F42.2":  "OCD",
	"F31.9":  "Bipolar disorder",
	"F50.9":  "Eating disorder",
}
