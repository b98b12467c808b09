package notify

import (
	"context"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

// InboxSink stores events as in-app notifications.
type InboxSink struct {
	repo repository.NotificationRepository
}

func NewInboxSink(repo repository.NotificationRepository) *InboxSink {
	return &InboxSink{repo: repo}
}

func (s *InboxSink) Deliver(ctx context.Context, ev Event) error {
	return s.repo.Create(ctx, &domain.Notification{
		MemberID:   ev.MemberID,
		EventType:  ev.Type,
		Title:      ev.Title,
		Message:    ev.Message,
		Attributes: ev.Attributes,
	})
}

// EmailSender abstracts the outbound mail client.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MemberEmail resolves a member id to an address.
type MemberEmail interface {
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
}

// EmailSink mails events to the member, or to the staff address for
// broadcast events.
type EmailSink struct {
	sender     EmailSender
	members    MemberEmail
	staffEmail string
}

func NewEmailSink(sender EmailSender, members MemberEmail, staffEmail string) *EmailSink {
	return &EmailSink{sender: sender, members: members, staffEmail: staffEmail}
}

func (s *EmailSink) Deliver(ctx context.Context, ev Event) error {
	to := s.staffEmail
	if ev.MemberID != nil {
		member, err := s.members.GetByID(ctx, *ev.MemberID)
		if err != nil {
			return err
		}
		to = member.Email
	}
	if to == "" {
		return nil
	}
	return s.sender.Send(ctx, to, ev.Title, ev.Message)
}
