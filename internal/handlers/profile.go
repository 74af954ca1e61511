package handlers

import (
	"bufio"
	"errors"
	"net/http"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
)

type UpdateNameRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type MoodRequest struct {
	Mood string `json:"mood"`
}

type LocaleRequest struct {
	Locale string `json:"locale"`
}

func (h *Handler) ProfileStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Profiles.Stats(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"stats": stats})
}

func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req UpdateNameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.Profiles.UpdateName(r.Context(), currentUser(r), req.FirstName, req.LastName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"user": user})
}

func (h *Handler) SetMood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.Profiles.SetMood(r.Context(), currentUser(r), req.Mood)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"user": user})
}

// SetLocale answers in the new language.
func (h *Handler) SetLocale(w http.ResponseWriter, r *http.Request) {
	var req LocaleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.Profiles.SetLocale(r.Context(), currentUser(r), req.Locale)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"user": user, "locale": user.Locale})
}

// UploadAvatar takes a multipart "file" of at most 5 MB.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	// room for the multipart framing on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize+64<<10)
	if err := r.ParseMultipartForm(services.MaxAvatarSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, services.ErrAvatarTooLarge)
			return
		}
		writeMessage(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, nil)
		return
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := reader.Peek(512)
		contentType = http.DetectContentType(head)
	}

	user, err := h.Profiles.UploadAvatar(r.Context(), currentUser(r), reader, header.Size, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"message": i18n.TCtx(r.Context(), i18n.MsgAvatarUpdated, nil), "user": user})
}
