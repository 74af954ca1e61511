package handlers

import (
	"net/http"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req services.CollectionInput
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.Collections.Create(r.Context(), currentUser(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{"message": i18n.TCtx(r.Context(), i18n.MsgCollectionCreated, nil), "collection": c})
}

func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	list, err := h.Collections.List(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"collections": list})
}

// GetCollection returns the collection with its entries, newest first.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Collections.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"collection": detail.Collection, "entries": detail.Entries})
}

// DeleteCollection removes the collection; its entries move back to the timeline.
func (h *Handler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.Collections.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"message": i18n.TCtx(r.Context(), i18n.MsgCollectionDeleted, nil)})
}
