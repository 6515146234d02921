package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates sending, storage, and retrieval of notifications.
// Storage is an in-memory delivery log; real transports plug in behind the
// sender interfaces.
type Manager struct {
	emailSender   EmailSender
	smsSender     SMSSender
	templates     *TemplateEngine
	mu            sync.RWMutex
	notifications map[string]*Notification
}

func NewManager(email EmailSender, sms SMSSender, tpl *TemplateEngine) *Manager {
	return &Manager{
		emailSender:   email,
		smsSender:     sms,
		templates:     tpl,
		notifications: make(map[string]*Notification),
	}
}

// Send dispatches a notification through the matching channel and records the
// outcome.
func (m *Manager) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = StatusPending

	sendErr := m.deliver(ctx, n)
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	m.mu.Lock()
	m.notifications[n.ID] = n
	m.mu.Unlock()

	return sendErr
}

func (m *Manager) deliver(ctx context.Context, n *Notification) error {
	switch n.Type {
	case TypeEmail:
		return m.emailSender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case TypeSMS:
		return m.smsSender.SendSMS(ctx, n.Recipient, n.Body)
	default:
		return fmt.Errorf("unsupported notification type: %s", n.Type)
	}
}

// SendFromTemplate renders a template and sends the resulting notification.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Type:         m.templates.templateType(templateID),
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}

	if err := m.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a notification by ID.
func (m *Manager) Get(_ context.Context, id string) (*Notification, error) {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns notifications for a recipient, up to limit.
func (m *Manager) ListByRecipient(_ context.Context, recipient string, limit int) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Retry re-sends a failed notification.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != StatusFailed {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}

	sendErr := m.deliver(ctx, n)

	m.mu.Lock()
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns counts of notifications grouped by status.
func (m *Manager) Stats(_ context.Context) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range m.notifications {
		stats[n.Status]++
	}
	return stats
}
