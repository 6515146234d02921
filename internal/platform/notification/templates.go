package notification

import (
	"fmt"
	"strings"
	"sync"
)

// Template IDs registered by default.
const (
	TemplateAppointmentBooked    = "appointment-booked"
	TemplateAppointmentConfirmed = "appointment-confirmed"
	TemplateAppointmentCancelled = "appointment-cancelled"
	TemplateAppointmentReminder  = "appointment-reminder"
	TemplateAppointmentBookedSMS = "appointment-booked-sms"

	TemplateAppointmentCancelledSMS = "appointment-cancelled-sms"
)

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Type    Type   `json:"type"`
}

// TemplateEngine stores templates and renders them with {{key}} replacement.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in appointment
// templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      TemplateAppointmentBooked,
			Name:    "Appointment Booked",
			Subject: "Appointment booked at {{establishment}}",
			Body:    "Hello {{recipient_name}}, an appointment for {{service}} has been booked on {{date}} at {{time}} at {{establishment}}. Amount due on site: {{patient_amount}} FCFA (insurance covers {{covered_amount}} FCFA).",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateAppointmentConfirmed,
			Name:    "Appointment Confirmed",
			Subject: "Appointment confirmed at {{establishment}}",
			Body:    "Hello {{recipient_name}}, your appointment on {{date}} at {{time}} at {{establishment}} has been confirmed.",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateAppointmentCancelled,
			Name:    "Appointment Cancelled",
			Subject: "Appointment cancelled",
			Body:    "Hello {{recipient_name}}, the appointment on {{date}} at {{time}} at {{establishment}} has been cancelled. Reason: {{reason}}.",
			Type:    TypeEmail,
		},
		{
			ID:      TemplateAppointmentReminder,
			Name:    "Appointment Reminder",
			Subject: "Reminder: appointment on {{date}}",
			Body:    "Hello {{recipient_name}}, this is a reminder of your appointment on {{date}} at {{time}} at {{establishment}}.",
			Type:    TypeEmail,
		},
		{
			ID:   TemplateAppointmentBookedSMS,
			Name: "Appointment Booked (SMS)",
			Body: "CareFlow: appointment {{date}} {{time}} at {{establishment}}. Due on site: {{patient_amount}} FCFA.",
			Type: TypeSMS,
		},
		{
			ID:   TemplateAppointmentCancelledSMS,
			Name: "Appointment Cancelled (SMS)",
			Body: "CareFlow: appointment {{date}} {{time}} at {{establishment}} is cancelled.",
			Type: TypeSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template and performs {{key}} replacement with data.
// Placeholders absent from data are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

func (e *TemplateEngine) templateType(templateID string) Type {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Type
	}
	return TypeEmail
}
