package session

import "github.com/therascribe/therascribe/internal/model"

// StartRequest carries the inputs of a live-capture start. SessionType is a
// builtin note kind ("soap", "dap", ...) or a "template_<id>" reference.
type StartRequest struct {
	PatientID   string `json:"patientId"`
	SessionType string `json:"sessionType"`
	Title       string `json:"title,omitempty"`
	Location    string `json:"location,omitempty"`
}

// EndRequest carries the finished note body for an end-session call.
type EndRequest struct {
	Notes string `json:"notes"`
}

// Partial carries the fields of an update request; nil means "leave as is".
type Partial struct {
	Title    *string            `json:"title,omitempty"`
	Status   *string            `json:"status,omitempty"`
	Notes    *string            `json:"notes,omitempty"`
	CPTCode  *string            `json:"cptCode,omitempty"`
	Location *string            `json:"location,omitempty"`
	Sections *map[string]string `json:"sections,omitempty"`
}

func (p Partial) apply(base model.Session) model.Session {
	if p.Title != nil {
		base.Title = *p.Title
	}
	if p.Status != nil {
		base.Status = *p.Status
	}
	if p.Notes != nil {
		base.Notes = *p.Notes
	}
	if p.CPTCode != nil {
		base.CPTCode = *p.CPTCode
	}
	if p.Location != nil {
		base.Location = *p.Location
	}
	if p.Sections != nil {
		base.Sections = *p.Sections
	}
	return base
}

// Enriched is a session joined with the display fields list views need, so
// clients never have to fetch the patient and template separately.
type Enriched struct {
	model.Session
	PatientName    string `json:"patientName"`
	PatientInitial string `json:"patientInitial"`
	TemplateName   string `json:"templateName,omitempty"`
}
