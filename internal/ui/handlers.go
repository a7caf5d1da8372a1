package ui

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/yuankika/final-computer/internal/calculator"
	"github.com/yuankika/final-computer/internal/observability"

	"go.uber.org/zap"
)

const (
	// CookieName carries the session ID.
	CookieName = "calc_session"

	maxFormBytes = 1 << 14
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type operatorButton struct {
	Symbol   string
	Label    string
	Selected bool
}

type pageData struct {
	First     string
	Second    string
	Operator  string
	Operators []operatorButton
	Busy      bool
	HasResult bool
	Result    string
	Expr      string
	Error     string
}

func newPageData(st State) pageData {
	data := pageData{
		First:    st.First,
		Second:   st.Second,
		Operator: st.Operator,
		Busy:     st.Busy,
		Expr:     st.Expr,
	}

	for _, op := range calculator.Operators {
		data.Operators = append(data.Operators, operatorButton{
			Symbol:   op.Symbol(),
			Label:    op.String(),
			Selected: op.Symbol() == st.Operator,
		})
	}

	switch v := st.Outcome.(type) {
	case calculator.Result:
		data.HasResult = true
		data.Result = calculator.FormatNumber(v.Value)
	case calculator.Failure:
		data.Error = v.Message
	}

	return data
}

// Handler serves the calculator form. State lives server side and the
// browser only holds a session cookie.
type Handler struct {
	store *Store
	calc  calculator.Calculator
}

func NewHandler(store *Store, calc calculator.Calculator) *Handler {
	return &Handler{store: store, calc: calc}
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(s.Snapshot())); err != nil {
		observability.LoggerWithTrace(r.Context()).Error("rendering page",
			zap.Error(err),
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Calculate handles POST /calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if !h.applyForm(w, r, s) {
		return
	}

	res := s.Submit(r.Context(), h.calc)

	submissionsTotal.WithLabelValues(calculator.OutcomeLabel(res.Outcome)).Inc()
	if res.Stale {
		staleCompletionsTotal.Inc()
		observability.LoggerWithTrace(r.Context()).Info("dropped stale completion",
			zap.String("session_id", s.ID),
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)
	}

	redirectHome(w, r)
}

// Operator handles POST /operator. Operand texts are kept so switching
// operator does not lose typed input.
func (h *Handler) Operator(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if !h.applyForm(w, r, s) {
		return
	}
	redirectHome(w, r)
}

// Reset handles POST /reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Reset()
	redirectHome(w, r)
}

func (h *Handler) applyForm(w http.ResponseWriter, r *http.Request, s *Session) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}

	s.SetOperands(r.PostForm.Get("first"), r.PostForm.Get("second"))
	if op := r.PostForm.Get("op"); op != "" {
		s.SelectOperator(op)
	}
	return true
}

// session returns the caller's session, starting a new one when the cookie
// is missing or expired.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		if s, ok := h.store.Get(c.Value); ok {
			return s
		}
	}

	s := h.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
