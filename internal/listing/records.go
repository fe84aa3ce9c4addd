package listing

import "github.com/ashureev/voicesite/internal/domain"

// AppointmentFields searches patient name, service and email; filters on status and date.
var AppointmentFields = Fields[domain.Appointment]{
	Search: func(a domain.Appointment) []string { return []string{a.PatientName, a.Service, a.Email} },
	Status: func(a domain.Appointment) string { return a.Status },
	Date:   func(a domain.Appointment) string { return a.Date },
}

// PatientFields searches name, email and phone; filters on status.
var PatientFields = Fields[domain.Patient]{
	Search: func(p domain.Patient) []string { return []string{p.Name, p.Email, p.Phone} },
	Status: func(p domain.Patient) string { return p.Status },
}

// CallLogFields searches caller, phone and summary; filters on outcome and call day.
var CallLogFields = Fields[domain.CallLog]{
	Search: func(c domain.CallLog) []string { return []string{c.Caller, c.Phone, c.Summary} },
	Status: func(c domain.CallLog) string { return c.Outcome },
	Date:   func(c domain.CallLog) string { return c.Date() },
}
