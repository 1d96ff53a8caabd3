package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/enrich"
	"github.com/aretw0/slotfill/pkg/ports"
	"github.com/aretw0/slotfill/pkg/runner"
	"github.com/aretw0/slotfill/pkg/schema"
)

// MaxTemplateSize bounds POST /validate bodies.
const MaxTemplateSize = 1 << 20

// MaxRequestSize bounds the JSON bodies of session and turn requests.
const MaxRequestSize = 64 << 10

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	TemplateID string `json:"template_id"`
	SessionID  string `json:"session_id,omitempty"`
}

// TurnRequest is the body of POST /sessions/{id}/turns.
type TurnRequest struct {
	Utterance string `json:"utterance"`
}

// ValidationResult is the body returned by POST /validate.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	ID     string        `json:"id,omitempty"`
	Issues schema.Issues `json:"issues,omitempty"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "slotfill-http",
		"version":     strings.TrimSpace(s.version),
		"api_version": apiVersion,
	})
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	ids, err := s.templates.List(r.Context())
	if err != nil {
		s.logger.Error("list templates failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxTemplateSize))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	tpl, err := schema.Compile(data)
	if err != nil {
		if issues := schema.IssuesOf(err); issues != nil {
			writeJSON(w, http.StatusUnprocessableEntity, ValidationResult{Issues: issues})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ValidationResult{Valid: true, ID: tpl.ID})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.logger.Error("list sessions failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	tpl, err := s.templates.Get(r.Context(), body.TemplateID)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	var started *runner.Response
	state, created, err := s.sessions.LoadOrStart(r.Context(), body.SessionID, func(ctx context.Context) (*domain.State, error) {
		resp, err := runner.Start(ctx, s.engine, body.SessionID, tpl)
		if err != nil {
			return nil, err
		}
		started = resp
		return resp.State, nil
	})
	if err != nil {
		s.logger.Error("start session failed", "session_id", body.SessionID, "err", err)
		writeError(w, statusOf(err), err.Error())
		return
	}

	if !created {
		if state.TemplateID != tpl.ID {
			writeError(w, http.StatusConflict, fmt.Sprintf("session %s uses template %s", state.SessionID, state.TemplateID))
			return
		}
		writeJSON(w, http.StatusOK, s.view(tpl, state))
		return
	}
	s.logger.Info("session started", "session_id", body.SessionID, "template", tpl.ID)
	writeJSON(w, http.StatusCreated, started)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	tpl, err := s.templates.Get(r.Context(), state.TemplateID)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.view(tpl, state))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	var body TurnRequest
	if !decodeBody(w, r, &body) {
		return
	}
	utterance, err := s.sanitize(body.Utterance)
	if err != nil {
		s.logger.Warn("input rejected", "session_id", id, "err", err, "size", len(body.Utterance))
		writeError(w, statusOf(err), err.Error())
		return
	}

	var resp *runner.Response
	_, err = s.sessions.Update(r.Context(), id, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		tpl, err := s.templates.Get(ctx, state.TemplateID)
		if err != nil {
			return nil, err
		}
		resp, err = runner.Respond(ctx, s.engine, tpl, state, utterance)
		if err != nil {
			return nil, err
		}
		return resp.State, nil
	})
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("advance failed", "session_id", id, "err", err)
		}
		writeError(w, status, err.Error())
		return
	}

	s.broadcast(id, resp.Diff)
	s.enrich(r.Context(), resp.State, utterance)
	if s.metrics != nil {
		s.metrics.ObserveTurn(Transport, started)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sanitize(utterance string) (string, error) {
	if s.maxInputSize > 0 {
		return runner.SanitizeInputLimit(utterance, s.maxInputSize)
	}
	return runner.SanitizeInput(utterance)
}

// view renders the pending prompt of a stored state without recording it.
func (s *Server) view(tpl *schema.Template, state *domain.State) *runner.Response {
	resp := &runner.Response{
		State:    state,
		Prompt:   s.engine.Prompt(tpl, state),
		Terminal: state.Terminal(),
	}
	if resp.Terminal {
		resp.Summary = runner.Summary(state)
	}
	return resp
}

func (s *Server) broadcast(sessionID string, diff *domain.StateDiff) {
	if diff == nil {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("diff encode failed", "session_id", sessionID, "err", err)
		return
	}
	s.streams.Broadcast(sessionID, string(payload))
}

// enrich dispatches a background lookup when the turn left an unconfirmed address main under
// the cursor. A found response is merged under the session lock, filling only empty slots.
func (s *Server) enrich(ctx context.Context, state *domain.State, utterance string) {
	if s.dispatcher == nil || utterance == "" || state.Terminal() {
		return
	}
	main, ok := state.CurrentMain()
	if !ok || main.Kind != domain.KindAddress || state.Memory.Confirmed(main.ID) {
		return
	}

	req := enrich.Request{SessionID: state.SessionID, FieldID: main.ID, Text: utterance}
	dispatched := s.dispatcher.Dispatch(ctx, req, func(ctx context.Context, resp enrich.Response) {
		var diff *domain.StateDiff
		_, err := s.sessions.Update(ctx, req.SessionID, func(_ context.Context, current *domain.State) (*domain.State, error) {
			merged, filled := enrich.Merge(s.composite, current, req.FieldID, resp)
			if len(filled) == 0 {
				return current, nil
			}
			diff = domain.Diff(current, merged)
			return merged, nil
		})
		switch {
		case err != nil:
			s.observeEnrichment("error")
			if !errors.Is(err, domain.ErrSessionNotFound) {
				s.logger.Error("enrichment merge failed", "session_id", req.SessionID, "err", err)
			}
		case diff == nil:
			s.observeEnrichment("unchanged")
		default:
			s.observeEnrichment("merged")
			s.logger.Info("enrichment merged", "session_id", req.SessionID, "field", req.FieldID)
			s.broadcast(req.SessionID, diff)
		}
	})
	if !dispatched {
		s.observeEnrichment("dropped")
	}
}

func (s *Server) observeEnrichment(outcome string) {
	if s.metrics != nil {
		s.metrics.Enrichments.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) subscribeSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	sessionID := chi.URLParam(r, "id")

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, f := range strings.Split(watch, ",") {
			watchList = append(watchList, strings.TrimSpace(f))
		}
	}

	ch, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// watched reports whether the encoded diff touches one of the fields.
func watched(msg string, fields []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch field {
		case "mode":
			if diff.Mode != nil || diff.CurrentMainIndex != nil || diff.CurrentSubID != nil {
				return true
			}
		case "memory":
			if len(diff.Memory) > 0 {
				return true
			}
		case "transcript":
			if len(diff.Transcript) > 0 {
				return true
			}
		}
	}
	return false
}

func (s *Server) subscribeTemplates(w http.ResponseWriter, r *http.Request) {
	watchable, ok := s.templates.(ports.Watchable)
	if !ok {
		writeError(w, http.StatusNotImplemented, "template loader does not support watching")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	events, err := watchable.Watch(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", id)
			flusher.Flush()
		}
	}
}

// decodeBody reads a capped JSON body into v, answering 413 or 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestSize)).Decode(v)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}
