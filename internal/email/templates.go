package email

import (
	"fmt"
	"html"
)

func RegistrationApproved(to, name string) Message {
	return Message{
		To:      []string{to},
		Subject: "Your pilot account has been approved",
		HTML: fmt.Sprintf("<p>Welcome aboard, %s!</p><p>Your registration was approved. You can now sign in and request your first career assignment.</p>",
			html.EscapeString(name)),
	}
}

func RegistrationRejected(to, name, reason string) Message {
	body := fmt.Sprintf("<p>Hello %s,</p><p>Unfortunately your registration was not approved.</p>", html.EscapeString(name))
	if reason != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(reason))
	}
	return Message{
		To:      []string{to},
		Subject: "Your pilot registration",
		HTML:    body,
	}
}
