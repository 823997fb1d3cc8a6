package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/notebook"
	"github.com/sandevgo/recall/pkg/log"
)

// Handler adapts the notebook service to HTTP. Request and response shapes
// live here; the service knows nothing about the wire.
type Handler struct {
	nb    *notebook.Notebook
	store core.ContentStore
}

func NewHandler(nb *notebook.Notebook, store core.ContentStore) *Handler {
	return &Handler{nb: nb, store: store}
}

type acquireRequest struct {
	URL      string `json:"url,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	MIME     string `json:"mime,omitempty"`
}

type acquireResponse struct {
	Note   core.ContentItem      `json:"note"`
	Result core.ExtractionResult `json:"result"`
}

type contextRequest struct {
	Query string `json:"query"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer  string             `json:"answer"`
	Sources []core.ContentItem `json:"sources"`
	Summary string             `json:"summary"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": core.RecallVersion})
}

func (h *Handler) Acquire(w http.ResponseWriter, r *http.Request) {
	var req acquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.URL == "" && req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "url or file_path is required")
		return
	}

	ref := core.SourceRef{URL: req.URL, FilePath: req.FilePath, MIME: req.MIME}
	note, result, err := h.nb.AddSource(r.Context(), ref)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("acquire failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acquireResponse{Note: note, Result: result})
}

func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	pc, err := h.nb.BuildContext(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pc)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, pc, err := h.nb.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  answer,
		Sources: pc.Sources,
		Summary: pc.Summary,
	})
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []core.ContentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
