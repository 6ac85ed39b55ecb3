package template

import "github.com/therascribe/therascribe/internal/model"

// seedTemplates are the starter note formats installed into an empty chart
// so a first launch never shows a bare template picker.
func seedTemplates() []model.Template {
	return []model.Template{
		{
			ID:              "template_default_1",
			Name:            "Psychotherapy Note",
			Format:          "DATE: [DATE]\nSTART TIME: [START TIME]\nEND TIME: [END TIME]\nSESSION LENGTH: [LENGTH] minutes\n\nPRESENTING ISSUES:\n[PRESENTING ISSUES]\n\nMENTAL STATUS:\n[MENTAL STATUS]\n\nINTERVENTIONS:\n[INTERVENTIONS]\n\nPLAN & RECOMMENDATIONS:\n[PLAN]",
			IncludeCptCodes: true,
			IsStructured:    true,
			Structure: model.TemplateStructure{Fields: []model.Field{
				{Label: "DATE", Placeholder: "[DATE]", Type: model.FieldDate},
				{Label: "START TIME", Placeholder: "[START TIME]", Type: model.FieldText},
				{Label: "END TIME", Placeholder: "[END TIME]", Type: model.FieldText},
				{Label: "SESSION LENGTH", Placeholder: "[LENGTH]", Type: model.FieldText, Suffix: "minutes"},
				{Label: "PRESENTING ISSUES", Placeholder: "[PRESENTING ISSUES]", Type: model.FieldTextarea},
				{Label: "MENTAL STATUS", Placeholder: "[MENTAL STATUS]", Type: model.FieldTextarea},
				{Label: "INTERVENTIONS", Placeholder: "[INTERVENTIONS]", Type: model.FieldTextarea},
				{Label: "PLAN & RECOMMENDATIONS", Placeholder: "[PLAN]", Type: model.FieldTextarea},
			}},
		},
		{
			ID:                "template_default_2",
			Name:              "Intake Assessment",
			Format:            "DATE: [DATE]\nCLIENT NAME: [NAME]\nDOB: [DOB]\n\nCHIEF COMPLAINT:\n[COMPLAINT]\n\nHISTORY OF PRESENT ILLNESS:\n[HISTORY]\n\nPAST PSYCHIATRIC HISTORY:\n[PAST HISTORY]\n\nMEDICAL HISTORY:\n[MEDICAL HISTORY]\n\nFAMILY HISTORY:\n[FAMILY HISTORY]\n\nMENTAL STATUS EXAMINATION:\n[MSE]\n\nDIAGNOSIS:\n[DIAGNOSIS]\n\nTREATMENT PLAN:\n[PLAN]",
			IncludeCptCodes:   true,
			IncludeAddOnCodes: true,
			IsStructured:      true,
			Structure: model.TemplateStructure{Fields: []model.Field{
				{Label: "DATE", Placeholder: "[DATE]", Type: model.FieldDate},
				{Label: "CLIENT NAME", Placeholder: "[NAME]", Type: model.FieldText},
				{Label: "DOB", Placeholder: "[DOB]", Type: model.FieldText},
				{Label: "CHIEF COMPLAINT", Placeholder: "[COMPLAINT]", Type: model.FieldTextarea},
				{Label: "HISTORY OF PRESENT ILLNESS", Placeholder: "[HISTORY]", Type: model.FieldTextarea},
				{Label: "PAST PSYCHIATRIC HISTORY", Placeholder: "[PAST HISTORY]", Type: model.FieldTextarea},
				{Label: "MEDICAL HISTORY", Placeholder: "[MEDICAL HISTORY]", Type: model.FieldTextarea},
				{Label: "FAMILY HISTORY", Placeholder: "[FAMILY HISTORY]", Type: model.FieldTextarea},
				{Label: "MENTAL STATUS EXAMINATION", Placeholder: "[MSE]", Type: model.FieldTextarea},
				{Label: "DIAGNOSIS", Placeholder: "[DIAGNOSIS]", Type: model.FieldTextarea},
				{Label: "TREATMENT PLAN", Placeholder: "[PLAN]", Type: model.FieldTextarea},
			}},
		},
		{
			ID:           "template_default_3",
			Name:         "SOAP Note",
			Format:       "DATE: [DATE]\nCLIENT: [CLIENT NAME]\n\nSUBJECTIVE:\n[SUBJECTIVE]\n\nOBJECTIVE:\n[OBJECTIVE]\n\nASSESSMENT:\n[ASSESSMENT]\n\nPLAN:\n[PLAN]",
			IsStructured: true,
			Structure: model.TemplateStructure{Fields: []model.Field{
				{Label: "DATE", Placeholder: "[DATE]", Type: model.FieldDate},
				{Label: "CLIENT", Placeholder: "[CLIENT NAME]", Type: model.FieldText},
				{Label: "SUBJECTIVE", Placeholder: "[SUBJECTIVE]", Type: model.FieldTextarea},
				{Label: "OBJECTIVE", Placeholder: "[OBJECTIVE]", Type: model.FieldTextarea},
				{Label: "ASSESSMENT", Placeholder: "[ASSESSMENT]", Type: model.FieldTextarea},
				{Label: "PLAN", Placeholder: "[PLAN]", Type: model.FieldTextarea},
			}},
		},
	}
}
