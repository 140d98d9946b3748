package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/ruleviz/pkg/buildinfo"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/pipeline"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

// maxRecordBody caps POST /api/records.
const maxRecordBody = 1 << 20

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

type domainInfo struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Trials int    `json:"trials"`
}

func (s *Server) listDomains(w http.ResponseWriter, _ *http.Request) {
	out := make([]domainInfo, 0, len(s.cfg.Feed))
	for _, name := range s.cfg.Feed.Domains() {
		out = append(out, domainInfo{
			Name:   name,
			Kind:   s.cfg.Feed.Kind(name, s.cfg.Kinds).String(),
			Trials: len(s.cfg.Feed[name]),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type trialInfo struct {
	Index        int           `json:"index"`
	Rule         string        `json:"rule"`
	Stimulus     stimulus.Pair `json:"stimulus"`
	Challenge    string        `json:"challenge"`
	Alternatives [2]string     `json:"alternatives"`
}

func (s *Server) listTrials(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	trials, ok := s.cfg.Feed[domain]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown domain %q", domain))
		return
	}
	out := make([]trialInfo, len(trials))
	for i := range trials {
		t := &trials[i]
		out[i] = trialInfo{
			Index:        i,
			Rule:         t.Rule,
			Stimulus:     t.Stimulus,
			Challenge:    t.Challenge,
			Alternatives: t.Alternatives(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatTree: "image/svg+xml",
	pipeline.FormatJSON: "application/json",
}

// renderTrial serves one artifact of the trial named by the route. The
// style query parameter overrides the configured style.
func (s *Server) renderTrial(format string, animated bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := chi.URLParam(r, "domain")
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "trial index %q is not a number", chi.URLParam(r, "index")))
			return
		}
		trial, err := s.cfg.Feed.Trial(domain, index)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		opts := s.cfg.Options
		opts.Kind = s.cfg.Feed.Kind(domain, s.cfg.Kinds)
		opts.Formats = []string{format}
		opts.Animated = animated
		if style := r.URL.Query().Get("style"); style != "" {
			if err := pipeline.ValidateStyle(style); err != nil {
				s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidStyle, err, "style"))
				return
			}
			opts.Style = style
		}

		res, err := s.cfg.Runner.Execute(r.Context(), trial, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("ETag", strconv.Quote(cache.Hash(res.Artifacts[format])[:16]))
		_, _ = w.Write(res.Artifacts[format])
	}
}

type recordsResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

// postRecords accepts one record or an array of records. Missing ids and
// timestamps are filled in.
func (s *Server) postRecords(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxRecordBody)
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records"))
		return
	}
	var records []telemetry.Record
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &records); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records"))
			return
		}
	} else {
		var rec telemetry.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode record"))
			return
		}
		records = append(records, rec)
	}

	resp := recordsResponse{IDs: make([]uuid.UUID, 0, len(records))}
	for _, rec := range records {
		if rec.Task == "" {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "record has no task"))
			return
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.Time.IsZero() {
			rec.Time = time.Now().UTC()
		}
		if err := s.cfg.Sink.Record(r.Context(), rec); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store record"))
			return
		}
		resp.IDs = append(resp.IDs, rec.ID)
	}
	writeJSON(w, http.StatusCreated, resp)
}
