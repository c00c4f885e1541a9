package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Invitation describes a team invitation email.
type Invitation struct {
	Email       string
	Name        string
	TeamID      string
	TeamName    string
	InviterName string
}

var invitationHTML = template.Must(template.New("invitation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Team Invitation</h2>
  <p>Hello {{.Name}},</p>
  <p>{{.InviterName}} has invited you to join the {{.TeamName}} team.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 20px; text-decoration: none; border-radius: 4px;">Accept Invitation</a>
  </p>
  <p>If you don't have an account yet, you'll be guided through the sign-up process.</p>
  <p>If you did not expect this invitation, you can safely ignore this email.</p>
</div>`))

// InvitationLink builds the accept link shown in the email.
func InvitationLink(frontendURL, teamID, email string) string {
	q := url.Values{}
	q.Set("teamId", teamID)
	q.Set("email", email)
	return strings.TrimRight(frontendURL, "/") + "/team-invitation?" + q.Encode()
}

// TeamInvitation renders the invitation email.
func TeamInvitation(frontendURL string, inv Invitation) (Message, error) {
	name := inv.Name
	if name == "" {
		name = inv.Email
	}
	link := InvitationLink(frontendURL, inv.TeamID, inv.Email)

	var html bytes.Buffer
	err := invitationHTML.Execute(&html, struct {
		Name, InviterName, TeamName, Link string
	}{name, inv.InviterName, inv.TeamName, link})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render invitation: %w", err)
	}

	return Message{
		To:      inv.Email,
		ToName:  name,
		Subject: fmt.Sprintf("Invitation to join %s team", inv.TeamName),
		HTML:    html.String(),
		Text: fmt.Sprintf("Hello %s, %s has invited you to join the %s team. To accept this invitation, please visit: %s",
			name, inv.InviterName, inv.TeamName, link),
	}, nil
}
