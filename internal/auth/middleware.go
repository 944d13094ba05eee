package auth

import (
	"net/http"
	"net/url"
	"time"
)

// SessionCookie is the name of the HttpOnly cookie holding the keeper JWT.
const SessionCookie = "violets_session"

// RequireSession guards journal-editing routes. Requests without a valid
// session cookie are redirected (303) to loginPath with a "next" parameter
// pointing back at the page they came from.
//
// A nil tokens disables the check: with no keeper password configured the
// journal is open to anyone who can reach it.
func RequireSession(tokens *TokenService, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tokens == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if HasSession(r, tokens) {
				next.ServeHTTP(w, r)
				return
			}
			target := loginPath + "?next=" + url.QueryEscape(returnPath(r))
			http.Redirect(w, r, target, http.StatusSeeOther)
		})
	}
}

// HasSession reports whether r carries a valid session cookie.
func HasSession(r *http.Request, tokens *TokenService) bool {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return false
	}
	_, err = tokens.Validate(cookie.Value)
	return err == nil
}

// SetSession stores token in the session cookie.
func SetSession(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession expires the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// returnPath picks the page to come back to after logging in. A form POST
// is not repeatable, so the Referer (if same-site) is preferred over the
// request path.
func returnPath(r *http.Request) string {
	if r.Method == http.MethodGet {
		return r.URL.RequestURI()
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && ref.Path != "" {
		return SafeNext(ref.RequestURI())
	}
	return "/"
}

// SafeNext returns next if it is a local absolute path, otherwise "/".
// It keeps the login redirect from sending users to another site.
func SafeNext(next string) string {
	if len(next) == 0 || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return "/"
	}
	return next
}
