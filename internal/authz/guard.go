package authz

import (
	"errors"
	"fmt"
	"net/url"
)

// Reason classifies a denial.
type Reason string

const (
	Unauthenticated Reason = "unauthenticated"
	Forbidden       Reason = "forbidden"
	NotOwner        Reason = "not_owner"
)

const (
	homePath      = "/"
	loginPath     = "/login"
	dashboardPath = "/author/dashboard"
)

// Denial is returned when an access check fails.
type Denial struct {
	Reason   Reason
	Message  string
	Redirect string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("access denied (%s): %s", d.Reason, d.Message)
}

// AsDenial unwraps err into a *Denial if it is one.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// LoginRedirect returns the login URL that sends the user back to
// requestedPath afterwards.
func LoginRedirect(requestedPath string) string {
	if requestedPath == "" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(requestedPath)
}

// RequireAuthenticated denies anonymous requests.
func RequireAuthenticated(actor *Actor, requestedPath string) error {
	if actor == nil {
		return &Denial{
			Reason:   Unauthenticated,
			Message:  "Please log in first.",
			Redirect: LoginRedirect(requestedPath),
		}
	}
	return nil
}

// RequireAdmin denies everyone but admins, including anonymous requests.
func RequireAdmin(actor *Actor) error {
	if !actor.IsAdmin() {
		return &Denial{
			Reason:   Forbidden,
			Message:  "Administrator access required.",
			Redirect: homePath,
		}
	}
	return nil
}

// RequireAuthor denies everyone but authors, including anonymous requests.
func RequireAuthor(actor *Actor) error {
	if !actor.IsAuthor() {
		return &Denial{
			Reason:   Forbidden,
			Message:  "Only authors can use this feature.",
			Redirect: homePath,
		}
	}
	return nil
}
