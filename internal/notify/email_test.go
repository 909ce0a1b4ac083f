package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/devexchange/orgs-backend/v1/config"
	"github.com/devexchange/orgs-backend/v1/model"
	"go.uber.org/zap"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	fail map[string]error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if err := f.fail[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func configured() config.EmailConfig {
	return config.EmailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "mailer",
		Password:  "secret",
		FromEmail: "noreply@example.com",
		FromName:  "Exchange",
		BaseURL:   "https://exchange.example.com/",
	}
}

func TestRender(t *testing.T) {
	org := &model.Org{Key: "acme", Name: "Acme & Sons"}
	requester := &model.User{Key: "alice", Username: "alice", DisplayName: "Alice Smith", Email: "alice@example.com"}
	inviter := &model.User{Key: "owner", Username: "owner"}
	recipient := &model.User{Key: "bob", Username: "bob"}

	tests := []struct {
		event       string
		view        MessageView
		wantSubject string
		wantBody    []string
	}{
		{
			event:       model.EventJoinRequest,
			view:        MessageView{Recipient: recipient, Org: org, RequestingUser: requester, OrgLink: "https://x/orgs/acme"},
			wantSubject: "Alice Smith has requested to join Acme & Sons",
			wantBody:    []string{"Hi bob", "alice@example.com", "Acme &amp; Sons", "https://x/orgs/acme"},
		},
		{
			event:       model.EventJoinRequestAccepted,
			view:        MessageView{Recipient: requester, Org: org},
			wantSubject: "Your request to join Acme & Sons was accepted",
			wantBody:    []string{"Hi Alice Smith", "has been accepted"},
		},
		{
			event:       model.EventJoinRequestDeclined,
			view:        MessageView{Recipient: requester, Org: org},
			wantSubject: "Your request to join Acme & Sons was declined",
			wantBody:    []string{"has been declined"},
		},
		{
			event:       model.EventInvitation,
			view:        MessageView{Recipient: recipient, Org: org, InvitingUser: inviter},
			wantSubject: "You have been invited to join Acme & Sons",
			wantBody:    []string{"<strong>owner</strong> has invited you"},
		},
		{
			event:       model.EventInvitationNonUser,
			view:        MessageView{Recipient: &model.User{Email: "new@example.com"}, Org: org, SignupLink: "https://x/signup"},
			wantSubject: "You have been invited to join Acme & Sons",
			wantBody:    []string{"An administrator has invited you", "https://x/signup"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			subject, body, err := Render(tt.event, tt.view)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if subject != tt.wantSubject {
				t.Errorf("subject = %q, want %q", subject, tt.wantSubject)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestRender_UnknownEvent(t *testing.T) {
	_, _, err := Render("nope", MessageView{})
	if err == nil {
		t.Fatal("expected error for unknown event")
	}
	if !errors.Is(err, ErrRender) {
		t.Errorf("expected ErrRender, got %v", err)
	}
}

func TestSender_SendsToEveryRecipient(t *testing.T) {
	mailer := &fakeMailer{fail: map[string]error{"b@example.com": errors.New("mailbox full")}}
	sender := NewSender(configured(), mailer, zap.NewNop())

	recipients := []model.User{
		{Key: "a", Username: "a", Email: "a@example.com"},
		{Key: "b", Username: "b", Email: "b@example.com"},
		{Key: "c", Username: "c"},
		{Key: "d", Username: "d", Email: "d@example.com"},
	}
	err := sender.SendMessages(context.Background(), model.EventJoinRequestAccepted, recipients, model.MessageData{Org: &model.Org{Key: "acme", Name: "Acme"}})
	if err == nil || !strings.Contains(err.Error(), "mailbox full") {
		t.Fatalf("expected joined send error, got %v", err)
	}

	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "a@example.com" || mailer.sent[1].to != "d@example.com" {
		t.Errorf("unexpected recipients %+v", mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].body, "https://exchange.example.com/orgs/acme") {
		t.Error("expected org link built from base url")
	}
}

func TestSender_LogsWhenNotConfigured(t *testing.T) {
	mailer := &fakeMailer{}
	cfg := configured()
	cfg.Password = ""
	sender := NewSender(cfg, mailer, zap.NewNop())

	err := sender.SendMessages(context.Background(), model.EventJoinRequestDeclined,
		[]model.User{{Key: "a", Email: "a@example.com"}}, model.MessageData{Org: &model.Org{Key: "acme", Name: "Acme"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Error("expected nothing mailed")
	}
}
