package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kineograph/kineograph/pkg/errors"
	"github.com/kineograph/kineograph/pkg/layout"
	"github.com/kineograph/kineograph/pkg/pipeline"
	"github.com/kineograph/kineograph/pkg/store"
)

// layoutRequest is the POST /api/layout body. Graph supplies the input
// inline; alternatively Demo generates one server-side. File paths are not
// accepted over HTTP.
type layoutRequest struct {
	Graph *json.RawMessage `json:"graph,omitempty"`
	pipeline.Options
}

// layoutResponse is the POST /api/layout reply. Artifact bytes are
// base64-encoded by the JSON encoder.
type layoutResponse struct {
	ID        uuid.UUID          `json:"id"`
	GraphHash string             `json:"graph_hash"`
	Layout    *layout.Layout     `json:"layout"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	opts := req.Options
	opts.Source = "" // path-based input is a CLI-only feature
	opts.Logger = s.logger

	var (
		result *pipeline.Result
		err    error
	)
	if req.Graph != nil {
		result, err = s.executeInline(r, *req.Graph, opts)
	} else {
		opts.Demo = true
		result, err = s.runner.Execute(r.Context(), opts)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	run := store.NewRun(opts, result)
	if err := s.store.Save(r.Context(), run); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		ID:        run.ID,
		GraphHash: result.GraphHash,
		Layout:    result.Layout,
		Artifacts: result.Artifacts,
		CacheInfo: result.CacheInfo,
	})
}

// executeInline runs the pipeline stages directly on a graph supplied in the
// request body, bypassing the file-based load stage.
func (s *Server) executeInline(r *http.Request, raw json.RawMessage, opts pipeline.Options) (*pipeline.Result, error) {
	g, err := readGraph(raw)
	if err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid options")
	}

	result := &pipeline.Result{}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	l, layoutHit, err := s.runner.SimulateWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.CacheInfo.LayoutHit = layoutHit

	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit
	return result, nil
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id"))
		return
	}
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id"))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
