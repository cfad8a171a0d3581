// Package responder holds one entry point per user action. Each takes the
// session id, updates the session and returns the view to render.
package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-qa/internal/answer"
	"doc-qa/internal/catalog"
	"doc-qa/internal/document"
	"doc-qa/internal/events"
	"doc-qa/internal/render"
	"doc-qa/internal/selector"
	"doc-qa/internal/session"
)

var (
	ErrEmptyQuery     = errors.New("query must not be empty")
	ErrUnknownExample = errors.New("unknown example label")
	ErrEmptyDocument  = errors.New("document text must not be empty")
)

// DocumentFunc returns the process-wide reference document.
type DocumentFunc func() (*document.Document, error)

// Answerer is the subset of answer.Generator used here.
type Answerer interface {
	Answer(ctx context.Context, query string, c selector.Context) answer.Result
}

// AnswerView is the rendered result of the latest query.
type AnswerView struct {
	Text    string         `json:"text"`
	HTML    string         `json:"html"`
	Outcome answer.Outcome `json:"outcome"`
	Model   string         `json:"model,omitempty"`
	Policy  string         `json:"policy"`
	Pages   []int          `json:"pages"`
}

// View is everything the results area needs.
type View struct {
	SessionID  string          `json:"session_id"`
	Document   string          `json:"document"`
	Draft      string          `json:"draft"`
	Answer     *AnswerView     `json:"answer,omitempty"`
	Transcript []session.Entry `json:"transcript"` // newest first
}

type Responder struct {
	log      *slog.Logger
	sessions session.Store
	document DocumentFunc
	selector selector.Selector
	answerer Answerer
	events   events.Publisher
	now      func() time.Time
}

func New(log *slog.Logger, sessions session.Store, doc DocumentFunc, sel selector.Selector, ans Answerer, pub events.Publisher) *Responder {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Responder{
		log:      log,
		sessions: sessions,
		document: doc,
		selector: sel,
		answerer: ans,
		events:   pub,
		now:      time.Now,
	}
}

// Start opens a session.
func (r *Responder) Start(ctx context.Context) (View, error) {
	s, err := r.sessions.Create(ctx)
	if err != nil {
		return View{}, fmt.Errorf("create session: %w", err)
	}
	return r.view(s, nil), nil
}

// View returns the current state of a session.
func (r *Responder) View(ctx context.Context, id string) (View, error) {
	s, err := r.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return r.view(s, nil), nil
}

// End drops the session and its transcript.
func (r *Responder) End(ctx context.Context, id string) error {
	return r.sessions.Delete(ctx, id)
}

// PickExample fills the draft query from the catalog.
func (r *Responder) PickExample(ctx context.Context, id, label string) (View, error) {
	q, ok := catalog.Lookup(label)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownExample, label)
	}
	if err := r.sessions.SetDraft(ctx, id, q); err != nil {
		return View{}, err
	}
	return r.View(ctx, id)
}

// UseText replaces the session's document with ad-hoc text.
func (r *Responder) UseText(ctx context.Context, id, name, text string, wordsPerPage int) (View, error) {
	if strings.TrimSpace(text) == "" {
		return View{}, ErrEmptyDocument
	}
	doc := document.FromText(name, text, wordsPerPage)
	if err := r.sessions.SetDocument(ctx, id, doc); err != nil {
		return View{}, err
	}
	r.log.Info("session document set", "session_id", id, "source", name, "pages", len(doc.Pages))
	return r.View(ctx, id)
}

// Submit answers a query against the session's document and records the
// exchange in the transcript.
func (r *Responder) Submit(ctx context.Context, id, query string) (View, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return View{}, ErrEmptyQuery
	}
	s, err := r.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}

	var (
		res answer.Result
		sel selector.Context
	)
	doc, err := r.documentFor(s)
	if err == nil {
		sel, res, err = r.respond(ctx, id, query, doc)
	}
	if err != nil {
		r.log.Error("context selection failed", "session_id", id, "err", err)
		res = answer.Failure(err)
	}

	now := r.now().UTC()
	if err := r.sessions.Append(ctx, id,
		session.Entry{Role: session.RoleUser, Text: query, At: now},
		session.Entry{Role: session.RoleAssistant, Text: res.Text, At: now},
	); err != nil {
		return View{}, fmt.Errorf("record transcript: %w", err)
	}
	if err := r.sessions.SetDraft(ctx, id, ""); err != nil {
		r.log.Warn("failed to clear draft", "session_id", id, "err", err)
	}

	r.publish(ctx, s.ID, doc, sel, query, res, now)

	s, err = r.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	av := &AnswerView{
		Text:    res.Text,
		Outcome: res.Outcome,
		Model:   res.Model,
		Policy:  sel.Policy,
		Pages:   sel.Pages,
	}
	if html, err := render.HTML(res.Text); err == nil {
		av.HTML = html
	} else {
		r.log.Warn("failed to render answer", "err", err)
	}
	return r.view(s, av), nil
}

// respond selects context and generates. A remote reference that fails on
// every candidate is dropped and the document re-selected once.
func (r *Responder) respond(ctx context.Context, id, query string, doc *document.Document) (selector.Context, answer.Result, error) {
	sel, err := r.selector.Select(ctx, query, doc)
	if err != nil {
		return sel, answer.Result{}, err
	}
	res := r.answerer.Answer(ctx, query, sel)
	f, ok := r.selector.(selector.Forgetter)
	if !ok || sel.FileID == "" || res.Outcome != answer.OutcomeFailed {
		return sel, res, nil
	}

	r.log.Warn("remote document reference failed, re-uploading", "session_id", id, "file_id", sel.FileID)
	if err := f.Forget(ctx, doc); err != nil {
		r.log.Warn("failed to drop file reference", "session_id", id, "err", err)
		return sel, res, nil
	}
	calls := res.Calls
	sel, err = r.selector.Select(ctx, query, doc)
	if err != nil {
		return sel, answer.Result{}, err
	}
	res = r.answerer.Answer(ctx, query, sel)
	res.Calls += calls
	return sel, res, nil
}

func (r *Responder) documentFor(s *session.Session) (*document.Document, error) {
	if s.Document != nil {
		return s.Document, nil
	}
	return r.document()
}

func (r *Responder) publish(ctx context.Context, sessionID string, doc *document.Document, sel selector.Context, query string, res answer.Result, at time.Time) {
	ex := events.Exchange{
		SessionID: sessionID,
		Policy:    sel.Policy,
		Pages:     sel.Pages,
		Query:     query,
		Outcome:   string(res.Outcome),
		Model:     res.Model,
		Calls:     res.Calls,
		At:        at,
	}
	if doc != nil {
		ex.Document = doc.Identity
	}
	if err := events.PublishWithRetry(ctx, r.events, ex, 2, 100*time.Millisecond); err != nil {
		r.log.Warn("failed to publish exchange", "session_id", sessionID, "err", err)
	}
}

func (r *Responder) view(s *session.Session, av *AnswerView) View {
	v := View{
		SessionID:  s.ID,
		Draft:      s.Draft,
		Answer:     av,
		Transcript: s.Newest(),
	}
	if s.Document != nil {
		v.Document = s.Document.Source
	} else if doc, err := r.document(); err == nil {
		v.Document = doc.Source
	}
	return v
}
