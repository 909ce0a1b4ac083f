package notify

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/devexchange/orgs-backend/v1/model"
)

// MessageView is the data every template is rendered with
type MessageView struct {
	Recipient      *model.User
	Org            *model.Org
	RequestingUser *model.User
	InvitingUser   *model.User
	OrgLink        string
	SignupLink     string
	SupportEmail   string
}

type messageTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

const layout = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.content { padding: 30px; background-color: #f9f9f9; }
		.button { display: inline-block; background-color: #003366; color: white; padding: 12px 30px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
		.footer { padding: 20px; text-align: center; color: #666; font-size: 12px; }
	</style>
</head>
<body>
	<div class="container">
		<div class="content">
			{{template "content" .}}
		</div>
		<div class="footer">
			<p>Questions? Contact <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a></p>
		</div>
	</div>
</body>
</html>
`

var sources = map[string][2]string{
	model.EventJoinRequest: {
		`{{.RequestingUser.Name}} has requested to join {{.Org.Name}}`,
		`<p>Hi {{.Recipient.Name}},</p>
<p><strong>{{.RequestingUser.Name}}</strong> ({{.RequestingUser.Email}}) has asked to join <strong>{{.Org.Name}}</strong>.</p>
<p>As an administrator of the company you can accept or decline the request.</p>
<center><a href="{{.OrgLink}}" class="button">Review Request</a></center>`,
	},
	model.EventJoinRequestAccepted: {
		`Your request to join {{.Org.Name}} was accepted`,
		`<p>Hi {{.Recipient.Name}},</p>
<p>Your request to join <strong>{{.Org.Name}}</strong> has been accepted. You are now a member of the company.</p>
<center><a href="{{.OrgLink}}" class="button">View Company</a></center>`,
	},
	model.EventJoinRequestDeclined: {
		`Your request to join {{.Org.Name}} was declined`,
		`<p>Hi {{.Recipient.Name}},</p>
<p>Your request to join <strong>{{.Org.Name}}</strong> has been declined by a company administrator.</p>`,
	},
	model.EventInvitation: {
		`You have been invited to join {{.Org.Name}}`,
		`<p>Hi {{.Recipient.Name}},</p>
<p>{{if .InvitingUser}}<strong>{{.InvitingUser.Name}}</strong>{{else}}An administrator{{end}} has invited you to join <strong>{{.Org.Name}}</strong>.</p>
<p>Open the company page and request to join.</p>
<center><a href="{{.OrgLink}}" class="button">View Company</a></center>`,
	},
	model.EventInvitationNonUser: {
		`You have been invited to join {{.Org.Name}}`,
		`<p>Hello,</p>
<p>{{if .InvitingUser}}<strong>{{.InvitingUser.Name}}</strong>{{else}}An administrator{{end}} has invited you to join <strong>{{.Org.Name}}</strong>.</p>
<p>Create an account first, then request to join the company.</p>
<center><a href="{{.SignupLink}}" class="button">Sign Up</a></center>`,
	},
}

var templates = mustParse()

func mustParse() map[string]messageTemplate {
	out := make(map[string]messageTemplate, len(sources))
	for event, src := range sources {
		subject := texttemplate.Must(texttemplate.New(event + "-subject").Parse(src[0]))
		body := template.Must(template.Must(template.New(event).Parse(layout)).New("content").Parse(src[1]))
		out[event] = messageTemplate{subject: subject, body: body}
	}
	return out
}

// ErrRender marks a message that cannot be rendered. Retrying does not help.
var ErrRender = errors.New("notification cannot be rendered")

// Render returns the subject and HTML body of event for view
func Render(event string, view MessageView) (string, string, error) {
	tmpl, ok := templates[event]
	if !ok {
		return "", "", fmt.Errorf("%w: no template for event %q", ErrRender, event)
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, view); err != nil {
		return "", "", fmt.Errorf("%w: subject of %s: %v", ErrRender, event, err)
	}
	if err := tmpl.body.ExecuteTemplate(&body, event, view); err != nil {
		return "", "", fmt.Errorf("%w: body of %s: %v", ErrRender, event, err)
	}
	return subject.String(), body.String(), nil
}
