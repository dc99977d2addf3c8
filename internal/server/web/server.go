// Package web is the request orchestrator: it resolves the client session,
// runs the anti-abuse guard and the validation pipeline, calls the services,
// and hands a View to the rendering collaborator.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avelichko/formdesk/internal/logging"
	"github.com/avelichko/formdesk/internal/server/accounts"
	"github.com/avelichko/formdesk/internal/server/guard"
	"github.com/avelichko/formdesk/internal/server/session"
	"github.com/avelichko/formdesk/internal/server/submissions"
)

type Server struct {
	addr        string
	logger      logging.Logger
	sessions    *session.Manager
	guard       *guard.Guard
	cookies     *CookieCodec
	accounts    *accounts.Service
	submissions *submissions.Service
	renderer    Renderer
}

func NewServer(addr string, l logging.Logger, sessions *session.Manager, g *guard.Guard,
	cookies *CookieCodec, as *accounts.Service, ss *submissions.Service, r Renderer) *Server {
	if r == nil {
		r = JSONRenderer{}
	}
	return &Server{
		addr:        addr,
		logger:      l.With("module", "web_server"),
		sessions:    sessions,
		guard:       g,
		cookies:     cookies,
		accounts:    as,
		submissions: ss,
		renderer:    r,
	}
}

// Handler builds the route table. Exposed separately so tests can drive the
// server through httptest without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /contact", s.handleContact)
	mux.HandleFunc("GET /guestbook", s.handleGuestbookList)
	mux.HandleFunc("POST /guestbook", s.handleGuestbookSubmit)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /admin/submissions", s.handleAdminList)
	mux.HandleFunc("POST /admin/submissions", s.handleAdminAction)
	mux.HandleFunc("GET /calc", s.handleCalcView)
	mux.HandleFunc("POST /calc", s.handleCalc)

	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// resolveSession turns the request's cookie into a live session, allocating
// an anonymous one (and setting a fresh cookie) when the cookie is missing,
// tampered with, or stale.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if parsed, err := s.cookies.Parse(c.Value); err == nil {
			id = parsed
		}
	}

	sess := s.sessions.Start(id)
	if sess.ID != id {
		if err := s.cookies.SetCookie(w, sess.ID); err != nil {
			s.logger.Error(r.Context(), "issuing session cookie", "error", err.Error())
		}
	}
	return sess
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
