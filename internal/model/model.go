// Package model defines the persisted record types that make up the chart
// Document. The store serializes the whole Document as one JSON value; the
// entity services keep in-memory caches of its slices.
package model

import "time"

// Diagnosis is a value object embedded in a Patient. Code is an ICD-10
// string; Name is the human-readable display.
type Diagnosis struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Patient is a clinician's client record.
//
// Diagnoses is the authoritative list; when non-empty, the first element is
// the primary diagnosis and its code/name are mirrored into the legacy
// ICDCode/Diagnosis fields for older display code.
type Patient struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Age       int         `json:"age"`
	Gender    string      `json:"gender,omitempty"`
	Category  string      `json:"category,omitempty"` // individual|relationship|family|group
	Pronouns  string      `json:"pronouns,omitempty"`
	ReferAs   string      `json:"referAs,omitempty"`
	Language  string      `json:"language,omitempty"`
	Diagnoses []Diagnosis `json:"diagnoses,omitempty"`

	// Legacy single-diagnosis fields, kept in sync with Diagnoses[0].
	ICDCode   string `json:"icdCode,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// PrimaryDiagnosis returns the first entry of Diagnoses, or nil.
func (p *Patient) PrimaryDiagnosis() *Diagnosis {
	if len(p.Diagnoses) == 0 {
		return nil
	}
	return &p.Diagnoses[0]
}

// Session statuses.
const (
	SessionScheduled  = "scheduled"
	SessionInProgress = "in-progress"
	SessionCompleted  = "completed"
	SessionHidden     = "hidden"
)

// Session is a single clinical note/session record. StartedAt is the source
// of truth for timing; Date/StartTime/EndTime are display strings stamped at
// write time. Sessions always reference a Patient; when that patient is
// deleted the session stays behind with PatientDeleted set (soft orphan).
type Session struct {
	ID          string `json:"id"`
	PatientID   string `json:"patientId"`
	SessionType string `json:"sessionType"` // builtin kind or "template_<id>"
	Status      string `json:"status"`
	Title       string `json:"title,omitempty"`

	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	Date            string     `json:"date,omitempty"`
	StartTime       string     `json:"startTime,omitempty"`
	EndTime         string     `json:"endTime,omitempty"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`

	Notes    string            `json:"notes,omitempty"`
	Sections map[string]string `json:"sections,omitempty"`

	TemplateID     string `json:"templateId,omitempty"`
	CPTCode        string `json:"cptCode,omitempty"`
	Location       string `json:"location,omitempty"`
	PatientDeleted bool   `json:"patientDeleted,omitempty"`
}

// FieldTypes for template schema fields.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldDate     = "date"
)

// Field is one entry of a template's derived schema. Placeholder is the
// bracket token exactly as it appears in the format string.
type Field struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Type        string `json:"type"`
	Suffix      string `json:"suffix,omitempty"`
}

// TemplateStructure wraps the ordered field schema.
type TemplateStructure struct {
	Fields []Field `json:"fields"`
}

// Template is a clinician-authored note format.
type Template struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Format            string            `json:"format"`
	IncludeCptCodes   bool              `json:"includeCptCodes"`
	IncludeAddOnCodes bool              `json:"includeAddOnCodes"`
	IsStructured      bool              `json:"isStructured"`
	Structure         TemplateStructure `json:"structure"`
	CreatedAt         time.Time         `json:"created_at,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at,omitempty"`
}

// Document is the single persisted aggregate of all entities.
type Document struct {
	Templates []Template `json:"templates"`
	Patients  []Patient  `json:"patients"`
	Sessions  []Session  `json:"sessions"`
}

// ActivePointer is the persisted resume record for an in-progress session.
// It must survive a full application restart.
type ActivePointer struct {
	PatientID   string `json:"patientId"`
	SessionType string `json:"sessionType"`
	SessionID   string `json:"sessionId"`
}
