package session

import "go-jobmatch-web/internal/domain"

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decide grants access iff a credential is present and, when required is
// non-empty, the cached role equals it.
func Decide(sess domain.Session, required domain.Role) Decision {
	if !sess.Present() {
		return RedirectLogin
	}
	if required != "" && sess.Role != required {
		return RedirectHome
	}
	return Allow
}

func (d Decision) Location() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}
