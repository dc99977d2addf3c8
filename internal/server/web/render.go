package web

import (
	"encoding/json"
	"net/http"

	"github.com/avelichko/formdesk/internal/server/session"
	"github.com/avelichko/formdesk/internal/server/submissions"
	"github.com/avelichko/formdesk/internal/server/validate"
)

// View is everything the rendering collaborator needs to produce a page:
// already-validated, typed data. The core never formats presentation.
type View struct {
	Errors  validate.Errors   `json:"errors,omitempty"`
	Old     map[string]string `json:"old,omitempty"`
	Success string            `json:"success,omitempty"`

	Records []*submissions.Record `json:"records,omitempty"`
	Record  *submissions.Record   `json:"record,omitempty"`
	Total   int                   `json:"total,omitempty"`
	Page    int                   `json:"page,omitempty"`
	Pages   int                   `json:"pages,omitempty"`

	Result  *float64 `json:"result,omitempty"`
	History []string `json:"history,omitempty"`

	User      *session.Identity `json:"user,omitempty"`
	CSRFToken string            `json:"csrf_token,omitempty"`
}

// Renderer turns a View into a response body. HTML rendering lives outside
// the core; the default implementation emits JSON.
type Renderer interface {
	Render(w http.ResponseWriter, status int, view *View)
}

type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, view *View) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(view)
}
