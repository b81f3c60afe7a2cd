// Package notice holds the short user-visible messages produced by the
// account and feed flows.
package notice

import "fmt"

const (
	TitleLoginFailed    = "Login Failed"
	TitleApplied        = "Applied"
	TitleAlreadyApplied = "Already Applied"
	TitleFailedToApply  = "Failed to Apply"
	TitleRejected       = "Rejected"
	TitleError          = "Error"
	TitleSaved          = "Saved"
	TitleModeFailed     = "Failed to update profile mode"
	TitleSignedOut      = "Signed Out"
	TitleLoggedIn       = "Logged In"

	MessageMissingCredentials = "Please enter email and password"
	MessageLoginFailed        = "Login failed"
	MessageSignOutFailed      = "Failed to sign out. Please try again."
	MessageNotSignedIn        = "Please log in first"
)

type Notice struct {
	Title   string
	Message string
}

func New(title, format string, args ...any) Notice {
	return Notice{Title: title, Message: fmt.Sprintf(format, args...)}
}

func (n Notice) IsZero() bool { return n.Title == "" && n.Message == "" }

// IsFailure reports whether the notice describes an unsuccessful action.
func (n Notice) IsFailure() bool {
	switch n.Title {
	case TitleLoginFailed, TitleFailedToApply, TitleError, TitleModeFailed:
		return true
	default:
		return false
	}
}

func (n Notice) String() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}
