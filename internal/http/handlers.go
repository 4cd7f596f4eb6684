package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pocket-wellness/internal/core"
	"pocket-wellness/pkg"
)

// Journal is the slice of the persistence layer the handlers need. It is an
// interface so the server runs journal-free (nil) in tests and in
// deployments without a database.
type Journal interface {
	CreateSession(ctx context.Context, sessionID string) error
	RecordAssessment(ctx context.Context, sessionID string, record *pkg.AssessmentRecord) error
	SetExercise(ctx context.Context, sessionID string, exercise pkg.Exercise, persona string) error
	RecordTurn(ctx context.Context, sessionID string, role pkg.Role, content string) error
}

// Server bundles the dependencies required by the HTTP handlers and
// implements http.Handler. Every endpoint maps to exactly one orchestrator
// event; the registry serializes events per session, so the handlers hold no
// session state of their own.
type Server struct {
	registry          *core.Registry
	recapper          *core.Recapper
	journal           Journal
	completionTimeout time.Duration
	router            chi.Router
}

// NewServer constructs a Server. journal may be nil to disable journaling;
// completionTimeout bounds every call into the completion client.
func NewServer(registry *core.Registry, recapper *core.Recapper, journal Journal, completionTimeout time.Duration) *Server {
	s := &Server{
		registry:          registry,
		recapper:          recapper,
		journal:           journal,
		completionTimeout: completionTimeout,
	}
	r := chi.NewRouter()
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/assessment", s.handleSubmitAssessment)
			r.Post("/exercise", s.handleChooseExercise)
			r.Post("/exercise/back", s.handleBack)
			r.Post("/setup", s.handleSubmitSetup)
			r.Post("/messages", s.handleSendMessage)
			r.Post("/finished", s.handleMarkFinished)
			r.Post("/clear", s.handleClearChat)
			r.Post("/change", s.handleChangeExercise)
			r.Post("/restart", s.handleStartOver)
			r.Get("/recap", s.handleRecap)
		})
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.registry.Create()
	s.journalDo(r.Context(), id, func(ctx context.Context) error {
		return s.journal.CreateSession(ctx, id)
	})
	var view pkg.SessionView
	_ = s.registry.With(id, func(sess *core.Session) error {
		view = sess.View()
		return nil
	})
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		return nil
	})
}

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req pkg.AssessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "sessionID")
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		if err := sess.SubmitAssessment(req.MoodRating, req.BodySensations, req.AttentionFocus); err != nil {
			return err
		}
		record := sess.View().Assessment
		s.journalDo(ctx, id, func(ctx context.Context) error {
			return s.journal.RecordAssessment(ctx, id, record)
		})
		return nil
	})
}

func (s *Server) handleChooseExercise(w http.ResponseWriter, r *http.Request) {
	var req pkg.ExerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		return sess.ChooseExercise(req.Exercise)
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		return sess.Back()
	})
}

func (s *Server) handleSubmitSetup(w http.ResponseWriter, r *http.Request) {
	var req pkg.SetupFields
	if !decodeBody(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "sessionID")
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		opening, err := sess.SubmitSetup(ctx, req)
		if err != nil {
			return err
		}
		view := sess.View()
		s.journalDo(ctx, id, func(ctx context.Context) error {
			if err := s.journal.SetExercise(ctx, id, view.Exercise, view.PersonaName); err != nil {
				return err
			}
			return s.journal.RecordTurn(ctx, id, pkg.RoleAssistant, opening)
		})
		return nil
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req pkg.MessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "sessionID")
	var resp pkg.MessageResponse
	err := s.registry.With(id, func(sess *core.Session) error {
		ctx, cancel := s.completionContext(r.Context())
		defer cancel()
		reply, err := sess.SendMessage(ctx, req.Content)
		if err != nil {
			return err
		}
		s.journalDo(ctx, id, func(ctx context.Context) error {
			if err := s.journal.RecordTurn(ctx, id, pkg.RoleUser, req.Content); err != nil {
				return err
			}
			return s.journal.RecordTurn(ctx, id, pkg.RoleAssistant, reply)
		})
		resp = pkg.MessageResponse{Reply: reply, View: sess.View()}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkFinished(w http.ResponseWriter, r *http.Request) {
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		_, err := sess.MarkExerciseFinished(ctx)
		return err
	})
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		return sess.ClearChat()
	})
}

func (s *Server) handleChangeExercise(w http.ResponseWriter, r *http.Request) {
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		return sess.ChangeExercise()
	})
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	s.respondWithView(w, r, func(ctx context.Context, sess *core.Session) error {
		sess.StartOver()
		return nil
	})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var view pkg.SessionView
	if err := s.registry.With(id, func(sess *core.Session) error {
		view = sess.View()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := s.completionContext(r.Context())
	defer cancel()
	recap, err := s.recapper.Recap(ctx, view)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

// respondWithView runs one orchestrator event under the session lock and
// returns the updated view, or a typed error rendered to a status code.
func (s *Server) respondWithView(w http.ResponseWriter, r *http.Request, event func(ctx context.Context, sess *core.Session) error) {
	id := chi.URLParam(r, "sessionID")
	var view pkg.SessionView
	err := s.registry.With(id, func(sess *core.Session) error {
		ctx, cancel := s.completionContext(r.Context())
		defer cancel()
		if err := event(ctx, sess); err != nil {
			return err
		}
		view = sess.View()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) completionContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.completionTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.completionTimeout)
}

// journalDo runs one journal write when journaling is enabled. Failures are
// logged and swallowed: the journal never gates the conversation.
func (s *Server) journalDo(ctx context.Context, sessionID string, fn func(ctx context.Context) error) {
	if s.journal == nil {
		return
	}
	if err := fn(ctx); err != nil {
		slog.Warn("journal write failed", "session_id", sessionID, "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, pkg.ErrorResponse{Error: "invalid JSON body", Kind: "bad_request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

// writeError maps the core error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *core.ValidationError
		phase      *core.PhaseError
		completion *core.CompletionFailure
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, pkg.ErrorResponse{Error: err.Error(), Kind: "validation"})
	case errors.Is(err, core.ErrUnsupportedExercise):
		writeJSON(w, http.StatusBadRequest, pkg.ErrorResponse{Error: err.Error(), Kind: "unsupported_exercise"})
	case errors.Is(err, core.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, pkg.ErrorResponse{Error: err.Error(), Kind: "not_found"})
	case errors.As(err, &phase):
		writeJSON(w, http.StatusConflict, pkg.ErrorResponse{Error: err.Error(), Kind: "wrong_phase"})
	case errors.Is(err, core.ErrNoPersona), errors.Is(err, core.ErrNotInitialized):
		writeJSON(w, http.StatusConflict, pkg.ErrorResponse{Error: err.Error(), Kind: "no_persona"})
	case errors.As(err, &completion):
		writeJSON(w, http.StatusBadGateway, pkg.ErrorResponse{Error: err.Error(), Kind: "completion_failure"})
	default:
		writeJSON(w, http.StatusInternalServerError, pkg.ErrorResponse{Error: err.Error()})
	}
}
