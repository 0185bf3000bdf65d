package mail

import (
	"fmt"
	"strings"
)

const (
	ActivationSubject = "Activate your account."
	ResetSubject      = "Reset Password"
)

// ActivationBody is sent after registration.
func ActivationBody(username, link string) string {
	return fmt.Sprintf("Hi %s, Please use this link to verify your account.\n%s\n", username, link)
}

// ResetBody is sent for a password reset request.
func ResetBody(link string) string {
	return fmt.Sprintf("Hi there, Please use this link to reset your password.\n%s\n", link)
}

// Link joins the public base URL with path segments.
func Link(baseURL string, segments ...string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.Join(segments, "/")
}
