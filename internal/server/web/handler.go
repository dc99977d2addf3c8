package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/server/calc"
	"github.com/avelichko/formdesk/internal/server/guard"
	"github.com/avelichko/formdesk/internal/server/session"
	"github.com/avelichko/formdesk/internal/server/submissions"
	"github.com/avelichko/formdesk/internal/server/validate"
)

// honeypotField is the hidden input bots fill in; humans never see it.
const honeypotField = "website"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	view := &View{User: sess.Identity, CSRFToken: sess.CSRFToken}
	if r.URL.Query().Get("sent") == "1" {
		view.Success = "Thanks! Your message has been received."
	}
	s.renderer.Render(w, http.StatusOK, view)
}

// runGuard executes the anti-abuse checks, folds the messages into the
// form-level error slot, and logs the rejection kinds for operators.
func (s *Server) runGuard(r *http.Request, sess *session.Session, errs validate.Errors) []guard.Rejection {
	rejections := s.guard.Check(sess, r.PostFormValue("csrf"), strings.TrimSpace(r.PostFormValue(honeypotField)))
	for _, rej := range rejections {
		errs.Add(validate.FormField, rej.Message)
	}
	if len(rejections) > 0 {
		s.logger.Warn(r.Context(), "submission rejected by guard",
			"kinds", guard.Describe(rejections), "ip", clientIP(r))
	}
	return rejections
}

// failureStatus picks the response status for a rejected submission:
// rate-limit beats the generic security status, validation-only failures
// are 422.
func failureStatus(rejections []guard.Rejection) int {
	switch {
	case guard.RateLimited(rejections):
		return http.StatusTooManyRequests
	case len(rejections) > 0:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	old := map[string]string{
		"name":    strings.TrimSpace(r.PostFormValue("name")),
		"email":   strings.TrimSpace(r.PostFormValue("email")),
		"subject": strings.TrimSpace(r.PostFormValue("subject")),
		"message": strings.TrimSpace(r.PostFormValue("message")),
	}

	errs := validate.Fields(
		validate.Field{Name: "name", Value: old["name"], Rules: []validate.Rule{
			validate.Required("Name"), validate.MinLen("Name", 2), validate.MaxLen("Name", 60), validate.Name(),
		}},
		validate.Field{Name: "email", Value: old["email"], Rules: []validate.Rule{
			validate.Required("Email"), validate.Email(),
		}},
		validate.Field{Name: "subject", Value: old["subject"], Rules: []validate.Rule{
			validate.Required("Subject"), validate.MinLen("Subject", 3), validate.MaxLen("Subject", 100),
		}},
		validate.Field{Name: "message", Value: old["message"], Rules: []validate.Rule{
			validate.Required("Message"), validate.MinLen("Message", 10), validate.MaxLen("Message", 2000),
		}},
	)
	rejections := s.runGuard(r, sess, errs)

	if !errs.Valid() {
		s.renderer.Render(w, failureStatus(rejections), &View{
			Errors: errs, Old: old, User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	record := &submissions.Record{
		Kind:      submissions.KindContact,
		SourceIP:  clientIP(r),
		Name:      old["name"],
		Email:     old["email"],
		Subject:   old["subject"],
		Body:      old["message"],
		UserAgent: r.UserAgent(),
	}
	if _, err := s.submissions.Submit(r.Context(), record); err != nil {
		s.renderStorageFailure(w, r, sess, old, err)
		return
	}

	s.guard.Pass(sess)
	http.Redirect(w, r, "/?sent=1", http.StatusSeeOther)
}

func (s *Server) handleGuestbookList(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result, err := s.submissions.Query(r.Context(),
		submissions.Filter{Kind: submissions.KindGuestbook}, page)
	if err != nil {
		s.renderStorageFailure(w, r, sess, nil, err)
		return
	}

	s.renderer.Render(w, http.StatusOK, &View{
		Records: result.Records, Total: result.Total, Page: result.Page, Pages: result.Pages,
		User: sess.Identity, CSRFToken: sess.CSRFToken,
	})
}

func (s *Server) handleGuestbookSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	old := map[string]string{
		"name":    strings.TrimSpace(r.PostFormValue("name")),
		"message": strings.TrimSpace(r.PostFormValue("message")),
	}

	errs := validate.Fields(
		validate.Field{Name: "name", Value: old["name"], Rules: []validate.Rule{
			validate.Required("Name"), validate.MinLen("Name", 2), validate.MaxLen("Name", 60), validate.Name(),
		}},
		validate.Field{Name: "message", Value: old["message"], Rules: []validate.Rule{
			validate.Required("Message"), validate.MinLen("Message", 5), validate.MaxLen("Message", 500),
		}},
	)
	rejections := s.runGuard(r, sess, errs)

	if !errs.Valid() {
		s.renderer.Render(w, failureStatus(rejections), &View{
			Errors: errs, Old: old, User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	record := &submissions.Record{
		Kind:      submissions.KindGuestbook,
		SourceIP:  clientIP(r),
		Name:      old["name"],
		Body:      old["message"],
		UserAgent: r.UserAgent(),
	}
	if _, err := s.submissions.Submit(r.Context(), record); err != nil {
		s.renderStorageFailure(w, r, sess, old, err)
		return
	}

	s.guard.Pass(sess)
	http.Redirect(w, r, "/guestbook", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	old := map[string]string{
		"name":  strings.TrimSpace(r.PostFormValue("name")),
		"email": strings.TrimSpace(r.PostFormValue("email")),
	}
	plainPassword := r.PostFormValue("password")

	errs := validate.Fields(
		validate.Field{Name: "name", Value: old["name"], Rules: []validate.Rule{
			validate.Required("Name"), validate.MinLen("Name", 2), validate.MaxLen("Name", 60), validate.Name(),
		}},
		validate.Field{Name: "email", Value: old["email"], Rules: []validate.Rule{
			validate.Required("Email"), validate.Email(),
		}},
		validate.Field{Name: "password", Value: plainPassword, Rules: []validate.Rule{
			validate.Required("Password"), validate.MinLen("Password", 6),
		}},
	)
	rejections := s.runGuard(r, sess, errs)

	if !errs.Valid() {
		s.renderer.Render(w, failureStatus(rejections), &View{
			Errors: errs, Old: old, User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	account, err := s.accounts.Register(r.Context(), old["name"], old["email"], plainPassword)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			errs.Add("email", "Email already registered.")
			s.renderer.Render(w, http.StatusConflict, &View{
				Errors: errs, Old: old, User: sess.Identity, CSRFToken: sess.CSRFToken,
			})
			return
		}
		s.renderStorageFailure(w, r, sess, old, err)
		return
	}

	s.sessions.Authenticate(sess, session.Identity{
		AccountID: account.ID, Name: account.Name, Email: account.Email,
	})
	s.guard.Pass(sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	old := map[string]string{"email": strings.TrimSpace(r.PostFormValue("email"))}
	plainPassword := r.PostFormValue("password")

	errs := validate.Fields(
		validate.Field{Name: "email", Value: old["email"], Rules: []validate.Rule{
			validate.Required("Email"),
		}},
		validate.Field{Name: "password", Value: plainPassword, Rules: []validate.Rule{
			validate.Required("Password"),
		}},
	)
	rejections := s.runGuard(r, sess, errs)

	if !errs.Valid() {
		s.renderer.Render(w, failureStatus(rejections), &View{
			Errors: errs, Old: old, User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	account, err := s.accounts.Login(r.Context(), old["email"], plainPassword)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			// One message for both unknown email and wrong password.
			errs.Add(validate.FormField, "Invalid email or password.")
			s.renderer.Render(w, http.StatusUnauthorized, &View{
				Errors: errs, Old: old, CSRFToken: sess.CSRFToken,
			})
			return
		}
		s.renderStorageFailure(w, r, sess, old, err)
		return
	}

	s.sessions.Authenticate(sess, session.Identity{
		AccountID: account.ID, Name: account.Name, Email: account.Email,
	})
	s.guard.Pass(sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	if !s.guard.CheckToken(sess, r.PostFormValue("csrf")) {
		s.renderSecurityRejection(w, r, sess)
		return
	}

	s.sessions.Logout(sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)
	if sess.Identity == nil {
		s.renderer.Render(w, http.StatusUnauthorized, &View{CSRFToken: sess.CSRFToken})
		return
	}

	q := r.URL.Query()

	if rawID := q.Get("id"); rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			s.renderer.Render(w, http.StatusNotFound, &View{User: sess.Identity, CSRFToken: sess.CSRFToken})
			return
		}
		record, err := s.submissions.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				s.renderer.Render(w, http.StatusNotFound, &View{User: sess.Identity, CSRFToken: sess.CSRFToken})
				return
			}
			s.renderStorageFailure(w, r, sess, nil, err)
			return
		}
		s.renderer.Render(w, http.StatusOK, &View{
			Record: record, User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	filter := submissions.Filter{Search: strings.TrimSpace(q.Get("q"))}
	if st := submissions.Status(q.Get("status")); st.Valid() {
		filter.Status = st
	}
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := s.submissions.Query(r.Context(), filter, page)
	if err != nil {
		s.renderStorageFailure(w, r, sess, nil, err)
		return
	}

	s.renderer.Render(w, http.StatusOK, &View{
		Records: result.Records, Total: result.Total, Page: result.Page, Pages: result.Pages,
		User: sess.Identity, CSRFToken: sess.CSRFToken,
	})
}

func (s *Server) handleAdminAction(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)
	if sess.Identity == nil {
		s.renderer.Render(w, http.StatusUnauthorized, &View{CSRFToken: sess.CSRFToken})
		return
	}

	if !s.guard.CheckToken(sess, r.PostFormValue("csrf")) {
		s.renderSecurityRejection(w, r, sess)
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.renderer.Render(w, http.StatusNotFound, &View{User: sess.Identity, CSRFToken: sess.CSRFToken})
		return
	}

	switch r.PostFormValue("action") {
	case "toggle":
		err = s.submissions.ToggleStatus(r.Context(), id)
	case "delete":
		err = s.submissions.Delete(r.Context(), id)
	default:
		errs := validate.Errors{}
		errs.Add(validate.FormField, "Unknown action.")
		s.renderer.Render(w, http.StatusBadRequest, &View{
			Errors: errs, User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.renderer.Render(w, http.StatusNotFound, &View{User: sess.Identity, CSRFToken: sess.CSRFToken})
			return
		}
		s.renderStorageFailure(w, r, sess, nil, err)
		return
	}

	http.Redirect(w, r, "/admin/submissions", http.StatusSeeOther)
}

func (s *Server) handleCalcView(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)
	s.renderer.Render(w, http.StatusOK, &View{
		History: sess.CalcHistory, User: sess.Identity, CSRFToken: sess.CSRFToken,
	})
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	sess := s.resolveSession(w, r)

	if !s.guard.CheckToken(sess, r.PostFormValue("csrf")) {
		s.renderSecurityRejection(w, r, sess)
		return
	}

	if r.PostFormValue("action") == "clear_history" {
		s.sessions.ClearHistory(sess)
		http.Redirect(w, r, "/calc", http.StatusSeeOther)
		return
	}

	rawA := strings.TrimSpace(r.PostFormValue("a"))
	rawB := strings.TrimSpace(r.PostFormValue("b"))
	op := r.PostFormValue("op")

	old := map[string]string{"a": rawA, "b": rawB, "op": op}

	result, err := calc.Evaluate(rawA, rawB, op)
	if err != nil {
		errs := validate.Errors{}
		errs.Add(validate.FormField, err.Error())
		s.renderer.Render(w, http.StatusUnprocessableEntity, &View{
			Errors: errs, Old: old, History: sess.CalcHistory,
			User: sess.Identity, CSRFToken: sess.CSRFToken,
		})
		return
	}

	s.sessions.AppendHistory(sess, calc.Line(rawA, rawB, op, result))
	s.renderer.Render(w, http.StatusOK, &View{
		Result: &result, Old: old, History: sess.CalcHistory,
		User: sess.Identity, CSRFToken: sess.CSRFToken,
	})
}

// renderSecurityRejection answers a failed CSRF-only check: logged for
// operators, generic for the client.
func (s *Server) renderSecurityRejection(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.logger.Warn(r.Context(), "request rejected", "kind", common.ErrSecurityRejected.Error(), "ip", clientIP(r))

	errs := validate.Errors{}
	errs.Add(validate.FormField, "Invalid form token. Please reload and try again.")
	s.renderer.Render(w, http.StatusBadRequest, &View{Errors: errs, CSRFToken: sess.CSRFToken})
}

// renderStorageFailure logs the underlying fault and answers with a generic
// message; internal detail never reaches the client.
func (s *Server) renderStorageFailure(w http.ResponseWriter, r *http.Request, sess *session.Session, old map[string]string, err error) {
	s.logger.Error(r.Context(), "storage failure", "error", err.Error())

	errs := validate.Errors{}
	errs.Add(validate.FormField, "Something went wrong. Please try again later.")
	s.renderer.Render(w, http.StatusInternalServerError, &View{
		Errors: errs, Old: old, User: sess.Identity, CSRFToken: sess.CSRFToken,
	})
}
