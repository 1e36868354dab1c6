package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackdiff/pkg/crawl"
	errs "github.com/matzehuels/stackdiff/pkg/errors"
	"github.com/matzehuels/stackdiff/pkg/render/nodelink"
	"github.com/matzehuels/stackdiff/pkg/session"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

type createRequest struct {
	Module string `json:"module"`
	First  string `json:"first"`
	Second string `json:"second"`
}

func (req createRequest) validate() error {
	if err := errs.ValidatePackageName(req.Module); err != nil {
		return err
	}
	if req.First == "" && req.Second == "" {
		return errs.New(errs.ErrCodeInvalidVersion, "at least one version is required")
	}
	if err := errs.ValidateVersionSpec(req.First); err != nil {
		return err
	}
	return errs.ValidateVersionSpec(req.Second)
}

type comparisonResponse struct {
	ID        string          `json:"id"`
	ExpiresAt time.Time       `json:"expires_at"`
	Snapshot  *crawl.Snapshot `json:"snapshot"`
}

type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleCreate starts a comparison. With ?wait=true it responds once the
// comparison has finished or the request is canceled.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, err)
		return
	}

	comparison := s.crawler.Start(s.base, req.Module, req.First, req.Second)
	sess := session.New(comparison, s.ttl)
	if err := s.store.Set(r.Context(), sess); err != nil {
		comparison.Cancel()
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "store session"))
		return
	}
	s.logger.Info("comparison started", "id", sess.ID, "module", req.Module,
		"first", req.First, "second", req.Second)

	status := http.StatusAccepted
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		if err := comparison.Wait(r.Context()); err == nil {
			status = http.StatusOK
		}
	}
	s.writeJSON(w, status, comparisonResponse{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Snapshot:  comparison.Snapshot(),
	})
}

// handleGet reports a comparison. ?format=dot|svg renders a diagram and
// ?only_different=true leaves out unchanged subtrees.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	onlyDifferent, _ := strconv.ParseBool(r.URL.Query().Get("only_different"))
	snap := sess.Comparison.Snapshot()
	if onlyDifferent && snap.Root != nil {
		snap.Root = snap.Root.Filter(true)
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, comparisonResponse{ID: sess.ID, ExpiresAt: sess.ExpiresAt, Snapshot: snap})
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(nodelink.ToDOT(snap, nodelink.Options{})))
	case "svg":
		svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(snap, nodelink.Options{}))
		if err != nil {
			s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q (want json, dot or svg)", format))
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, sessionError(err, id))
		return
	}
	s.logger.Info("comparison canceled", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.cache.Len()
	s.cache.Clear()
	s.logger.Info("cache cleared", "entries", n)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		return nil, errs.New(errs.ErrCodeSessionNotFound, "comparison %q not found", id)
	}
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, sessionError(err, id)
	}
	return sess, nil
}

func sessionError(err error, id string) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return errs.Wrap(errs.ErrCodeSessionNotFound, err, "comparison %q not found", id)
	case errors.Is(err, session.ErrExpired):
		return errs.Wrap(errs.ErrCodeSessionNotFound, err, "comparison %q expired", id)
	default:
		return errs.Wrap(errs.ErrCodeInternal, err, "load comparison %q", id)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: errs.UserMessage(err)},
	})
}
