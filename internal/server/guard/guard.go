// Package guard implements the anti-abuse checks that run before any form
// validation: CSRF token match, honeypot field, and the per-session
// submission rate limit. All three checks run even when an earlier one has
// already failed, and their messages aggregate into the form-level error
// slot.
package guard

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/server/session"
)

// Rejection pairs a sentinel kind (for operator logging) with the message
// shown to the user. Security rejections stay generic so an attacker learns
// nothing about which check tripped.
type Rejection struct {
	Kind    error
	Message string
}

type Guard struct {
	sessions    *session.Manager
	minInterval time.Duration
	now         func() time.Time
}

func New(sessions *session.Manager, minInterval time.Duration) *Guard {
	return &Guard{
		sessions:    sessions,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Check runs all three checks against the request's CSRF token and honeypot
// value. An empty result means the request may proceed to validation.
func (g *Guard) Check(s *session.Session, csrfToken, honeypot string) []Rejection {
	var rejections []Rejection

	if subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(csrfToken)) != 1 {
		rejections = append(rejections, Rejection{
			Kind:    common.ErrSecurityRejected,
			Message: "Invalid form token. Please reload and try again.",
		})
	}

	if honeypot != "" {
		rejections = append(rejections, Rejection{
			Kind:    common.ErrSecurityRejected,
			Message: "Submission blocked.",
		})
	}

	if !s.LastSubmission.IsZero() && g.now().Sub(s.LastSubmission) < g.minInterval {
		rejections = append(rejections, Rejection{
			Kind:    common.ErrRateLimited,
			Message: "Please wait a few seconds before submitting again.",
		})
	}

	return rejections
}

// CheckToken verifies only the CSRF token, timing-safe. Used by actions that
// skip the honeypot and rate-limit checks (logout, admin toggles). The token
// is deliberately not rotated here: rotation happens only in Pass, after an
// accepted form submission.
func (g *Guard) CheckToken(s *session.Session, csrfToken string) bool {
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(csrfToken)) == 1
}

// Pass records a successful state-changing submission: the rate-limit clock
// is stamped and the CSRF token rotated so the submitted form cannot be
// replayed.
func (g *Guard) Pass(s *session.Session) {
	g.sessions.MarkSubmission(s, g.now())
	g.sessions.RotateCSRF(s)
}

// RateLimited reports whether any rejection is a rate-limit violation; used
// by the transport to pick the response status.
func RateLimited(rejections []Rejection) bool {
	for _, r := range rejections {
		if r.Kind == common.ErrRateLimited {
			return true
		}
	}
	return false
}

// Describe renders rejections for operator logs without leaking them to the
// response.
func Describe(rejections []Rejection) string {
	out := ""
	for i, r := range rejections {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%v", r.Kind)
	}
	return out
}
