package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	errs "github.com/panon-btc/txlineage/pkg/errors"
	"github.com/panon-btc/txlineage/pkg/graphio"
	"github.com/panon-btc/txlineage/pkg/layout"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// maxBodyBytes caps request bodies. Large ancestry graphs run a few MB;
// anything past this is rejected rather than buffered.
const maxBodyBytes = 32 << 20

// =============================================================================
// Request / Response Types
// =============================================================================

// layoutRequest carries the graph to lay out. Expanded and Hidden drive
// visibility: the visible set is computed from the root outwards, so nodes
// unreachable through expanded ancestors stay out of the layout.
type layoutRequest struct {
	Graph    graphio.Graph `json:"graph"`
	Expanded []string      `json:"expanded,omitempty"`
	Hidden   []string      `json:"hidden,omitempty"`
}

type layoutResponse struct {
	Seq    uint64         `json:"seq"`
	Token  uuid.UUID      `json:"token"`
	Cached bool           `json:"cached"`
	Stale  bool           `json:"stale"`
	Layout *layout.Layout `json:"layout"`
}

type currentResponse struct {
	Seq    uint64         `json:"seq"`
	Layout *layout.Layout `json:"layout"`
}

// refreshRequest carries an updated graph plus the layout whose label text
// should be refreshed in place.
type refreshRequest struct {
	Graph  graphio.Graph  `json:"graph"`
	Layout *layout.Layout `json:"layout"`
}

type refreshResponse struct {
	Layout  *layout.Layout `json:"layout"`
	Changed []string       `json:"changed"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := graphio.ToModel(req.Graph)
	if err != nil {
		writeError(w, err)
		return
	}

	active := visibleSet(g, req.Expanded, req.Hidden)

	seqReq := s.seq.Issue()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	lay, cached, err := s.runner.LayoutWithCacheInfo(ctx, g, active)
	if err != nil {
		writeError(w, err)
		return
	}

	applied := s.seq.Apply(seqReq, lay)
	if !applied {
		s.logger.Debug("layout superseded", "seq", seqReq.Seq)
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Seq:    seqReq.Seq,
		Token:  seqReq.Token,
		Cached: cached,
		Stale:  !applied,
		Layout: lay,
	})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	lay, seq := s.seq.Current()
	if lay == nil {
		writeError(w, errs.New(errs.ErrCodeNotFound, "no layout computed yet"))
		return
	}
	writeJSON(w, http.StatusOK, currentResponse{Seq: seq, Layout: lay})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Layout == nil {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "missing layout"))
		return
	}

	g, err := graphio.ToModel(req.Graph)
	if err != nil {
		writeError(w, err)
		return
	}

	lay, changed := s.runner.RefreshLabels(g, req.Layout)
	writeJSON(w, http.StatusOK, refreshResponse{Layout: lay, Changed: changed})
}

// =============================================================================
// Helpers
// =============================================================================

// visibleSet resolves Expanded/Hidden lists into an active txid set. Nil
// means no visibility restriction was requested.
func visibleSet(g *txgraph.GraphModel, expanded, hidden []string) map[string]bool {
	if expanded == nil && hidden == nil {
		return nil
	}
	exp := make(map[string]bool, len(expanded))
	for _, txid := range expanded {
		exp[txid] = true
	}
	hid := make(map[string]bool, len(hidden))
	for _, txid := range hidden {
		hid[txid] = true
	}
	return txgraph.VisibleTxids(g, exp, hid)
}

// decodeBody parses the JSON request body into dst, writing a 400 on
// failure. Returns false when a response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error: errs.UserMessage(err),
		Code:  string(errs.GetCode(err)),
	})
}
