// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/healthdash/internal/opstate"
	"github.com/pdiddy/healthdash/internal/pipeline"
	"github.com/pdiddy/healthdash/internal/render"
	"github.com/pdiddy/healthdash/internal/reports"
	"github.com/pdiddy/healthdash/pkg/types"
)

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := render.PageData{Interactive: true}

	if query != "" {
		rep, err := s.engine.Search(r.Context(), pipeline.SearchRequest{Query: query, Save: s.save})
		switch {
		case errors.Is(err, opstate.ErrBusy):
			s.engine.Notices().Info("A search is already running.")
		case err != nil:
			s.log.Warn("dashboard search failed", zap.String("query", query), zap.Error(err))
		default:
			data.Report = rep
			data.ExportURL = exportURL(rep)
		}
	}
	data.Notices = s.engine.Notices().Drain()

	var buf bytes.Buffer
	if _, err := s.engine.Page(&buf, data); err != nil {
		s.log.Error("rendering dashboard", zap.Error(err))
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// exportURL links the PDF download of rep.
func exportURL(rep types.Report) string {
	v := url.Values{}
	v.Set("q", rep.Query)
	return "/export?" + v.Encode()
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		rep types.Report
		err error
	)
	switch {
	case q.Get("id") != "":
		if s.store == nil {
			writeError(w, http.StatusNotFound, "report store not configured")
			return
		}
		rep, err = s.store.Get(ctx, q.Get("id"))
	case q.Get("q") != "":
		rep, err = s.engine.Search(ctx, pipeline.SearchRequest{Query: q.Get("q")})
	default:
		writeError(w, http.StatusBadRequest, "query parameter 'q' or 'id' is required")
		return
	}
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	sink := &responseSink{w: w}
	if _, err := s.engine.Export(ctx, rep, sink); err != nil && !sink.wrote {
		s.writeFailure(w, err)
	}
}

// writeFailure maps pipeline errors to status codes. Notices raised by
// the failure are left for the next dashboard render.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, opstate.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, reports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// responseSink streams a finished PDF as an attachment.
type responseSink struct {
	w     http.ResponseWriter
	wrote bool
}

func (s *responseSink) Deliver(_ context.Context, filename string, data []byte) (string, error) {
	h := s.w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	s.w.WriteHeader(http.StatusOK)
	s.wrote = true
	if _, err := s.w.Write(data); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Classify(query))
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "report store not configured")
		return
	}
	q := r.URL.Query()
	opts := reports.QueryOptions{Query: q.Get("q"), Topic: types.Topic(q.Get("topic"))}
	if opts.Topic != "" && !opts.Topic.Valid() {
		writeError(w, http.StatusBadRequest, "unknown topic")
		return
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.MaxResults = n
	}

	list, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if list == nil {
		list = []reports.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "report store not configured")
		return
	}
	rep, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
