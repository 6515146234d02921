package notification

import (
	"context"
	"strings"
	"testing"
)

func newTestManager() (*Manager, *MockEmailSender, *MockSMSSender) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	return NewManager(email, sms, NewTemplateEngine()), email, sms
}

func TestRenderTemplate(t *testing.T) {
	engine := NewTemplateEngine()
	subject, body, err := engine.Render(TemplateAppointmentBooked, map[string]string{
		"recipient_name": "Awa Diop",
		"establishment":  "Clinique Pasteur",
		"service":        "Consultation generale",
		"date":           "2025-03-10",
		"time":           "09:30",
		"patient_amount": "7500",
		"covered_amount": "17500",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "Clinique Pasteur") {
		t.Errorf("subject missing establishment: %s", subject)
	}
	if !strings.Contains(body, "7500 FCFA") {
		t.Errorf("body missing patient amount: %s", body)
	}
	if !strings.Contains(body, "17500 FCFA") {
		t.Errorf("body missing covered amount: %s", body)
	}
}

func TestRenderTemplate_UnknownID(t *testing.T) {
	engine := NewTemplateEngine()
	if _, _, err := engine.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRenderTemplate_MissingDataLeftAsIs(t *testing.T) {
	engine := NewTemplateEngine()
	_, body, err := engine.Render(TemplateAppointmentCancelled, map[string]string{
		"recipient_name": "Moussa Sow",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "{{reason}}") {
		t.Errorf("expected unfilled placeholder to remain, got %s", body)
	}
}

func TestSendFromTemplate_Email(t *testing.T) {
	mgr, email, _ := newTestManager()
	n, err := mgr.SendFromTemplate(context.Background(), TemplateAppointmentConfirmed, map[string]string{
		"recipient_name": "Awa Diop",
		"establishment":  "Hopital Principal",
		"date":           "2025-03-10",
		"time":           "09:30",
	}, "awa@example.sn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Status != StatusSent {
		t.Errorf("expected sent, got %s", n.Status)
	}
	calls := email.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "awa@example.sn" {
		t.Errorf("unexpected recipient %s", calls[0].To)
	}
}

func TestSendFromTemplate_SMS(t *testing.T) {
	mgr, _, sms := newTestManager()
	_, err := mgr.SendFromTemplate(context.Background(), TemplateAppointmentBookedSMS, map[string]string{
		"date":           "2025-03-10",
		"time":           "09:30",
		"establishment":  "Clinique Pasteur",
		"patient_amount": "7500",
	}, "+221770000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sms.Calls()) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(sms.Calls()))
	}
}

func TestSend_FailureRecorded(t *testing.T) {
	mgr, email, _ := newTestManager()
	email.ShouldFail = true
	email.FailError = "smtp unreachable"

	n := &Notification{Type: TypeEmail, Recipient: "x@example.sn", Subject: "s", Body: "b"}
	if err := mgr.Send(context.Background(), n); err == nil {
		t.Fatal("expected send error")
	}
	if n.Status != StatusFailed {
		t.Errorf("expected failed, got %s", n.Status)
	}
	if n.Error != "smtp unreachable" {
		t.Errorf("unexpected error text: %s", n.Error)
	}
}

func TestRetry_AfterFailure(t *testing.T) {
	mgr, email, _ := newTestManager()
	email.ShouldFail = true
	email.FailError = "smtp unreachable"

	n := &Notification{Type: TypeEmail, Recipient: "x@example.sn", Subject: "s", Body: "b"}
	mgr.Send(context.Background(), n)

	email.ShouldFail = false
	if err := mgr.Retry(context.Background(), n.ID); err != nil {
		t.Fatalf("unexpected retry error: %v", err)
	}
	got, _ := mgr.Get(context.Background(), n.ID)
	if got.Status != StatusSent {
		t.Errorf("expected sent after retry, got %s", got.Status)
	}
	if got.Error != "" {
		t.Errorf("expected error cleared, got %s", got.Error)
	}
}

func TestRetry_RejectsNonFailed(t *testing.T) {
	mgr, _, _ := newTestManager()
	n := &Notification{Type: TypeEmail, Recipient: "x@example.sn", Subject: "s", Body: "b"}
	mgr.Send(context.Background(), n)
	if err := mgr.Retry(context.Background(), n.ID); err == nil {
		t.Error("expected error retrying a sent notification")
	}
}

func TestStats(t *testing.T) {
	mgr, email, _ := newTestManager()
	mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a@x.sn", Body: "b"})
	email.ShouldFail = true
	email.FailError = "boom"
	mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "b@x.sn", Body: "b"})

	stats := mgr.Stats(context.Background())
	if stats[StatusSent] != 1 || stats[StatusFailed] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestListByRecipient(t *testing.T) {
	mgr, _, _ := newTestManager()
	mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a@x.sn", Body: "b"})
	mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "b@x.sn", Body: "b"})

	list, err := mgr.ListByRecipient(context.Background(), "a@x.sn", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 notification, got %d", len(list))
	}
}
