package patient

import (
	"time"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/internal/platform/templating"
)

// Partial carries the fields of an update request; nil means "leave as is".
type Partial struct {
	Name      *string            `json:"name,omitempty"`
	Age       *int               `json:"age,omitempty"`
	Gender    *string            `json:"gender,omitempty"`
	Category  *string            `json:"category,omitempty"`
	Pronouns  *string            `json:"pronouns,omitempty"`
	ReferAs   *string            `json:"referAs,omitempty"`
	Language  *string            `json:"language,omitempty"`
	Diagnoses *[]model.Diagnosis `json:"diagnoses,omitempty"`
	ICDCode   *string            `json:"icdCode,omitempty"`
	Diagnosis *string            `json:"diagnosis,omitempty"`
}

func (p Partial) apply(base model.Patient) model.Patient {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.Age != nil {
		base.Age = *p.Age
	}
	if p.Gender != nil {
		base.Gender = *p.Gender
	}
	if p.Category != nil {
		base.Category = *p.Category
	}
	if p.Pronouns != nil {
		base.Pronouns = *p.Pronouns
	}
	if p.ReferAs != nil {
		base.ReferAs = *p.ReferAs
	}
	if p.Language != nil {
		base.Language = *p.Language
	}
	if p.Diagnoses != nil {
		base.Diagnoses = *p.Diagnoses
	}
	if p.ICDCode != nil {
		base.ICDCode = *p.ICDCode
	}
	if p.Diagnosis != nil {
		base.Diagnosis = *p.Diagnosis
	}
	return base
}

// View is a patient enriched with display fields. The derived fields are
// computed at read time rather than stored, so they can never go stale.
type View struct {
	model.Patient
	Initial     string `json:"initial"`
	DOB         string `json:"dob,omitempty"`
	LastSession string `json:"lastSession,omitempty"`
}

// NewView derives the display fields for a patient. lastSession may be
// empty when no session history is available.
func NewView(p model.Patient, lastSession string, now time.Time) View {
	return View{
		Patient:     p,
		Initial:     Initial(p.Name),
		DOB:         templating.DOBFromAge(p.Age, now),
		LastSession: lastSession,
	}
}
