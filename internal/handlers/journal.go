package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req services.EntryInput
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.Entries.Create(r.Context(), currentUser(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		"message": i18n.TCtx(r.Context(), i18n.MsgEntryCreated, nil),
		"entry":   created.Entry,
		"points":  created.Points,
	})
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Entries.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"entry": entry})
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req services.EntryUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.Entries.Update(r.Context(), currentUser(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"message": i18n.TCtx(r.Context(), i18n.MsgEntryUpdated, nil), "entry": entry})
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Entries.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"message": i18n.TCtx(r.Context(), i18n.MsgEntryDeleted, nil)})
}

// monthQuery reads month (0-11), year and the optional day. Missing month/year default to
// the current month in the request's timezone.
func (h *Handler) monthQuery(r *http.Request) (services.MonthQuery, error) {
	loc, err := h.location(r)
	if err != nil {
		return services.MonthQuery{}, err
	}
	now := time.Now().In(loc)
	q := services.MonthQuery{Month: int(now.Month()) - 1, Year: now.Year(), Loc: loc}

	params := r.URL.Query()
	if raw := params.Get("month"); raw != "" {
		if q.Month, err = strconv.Atoi(raw); err != nil {
			return q, &utils.ValidationError{Field: "month", Message: "month must be a number between 0 and 11"}
		}
	}
	if raw := params.Get("year"); raw != "" {
		if q.Year, err = strconv.Atoi(raw); err != nil {
			return q, &utils.ValidationError{Field: "year", Message: "year must be a number"}
		}
	}
	if raw := params.Get("day"); raw != "" {
		if q.Day, err = services.ParseDay(raw, loc); err != nil {
			return q, err
		}
	}
	return q, q.Validate()
}

// monthMessage is the placeholder shown when the month has nothing to list.
func monthMessage(lang string, q services.MonthQuery, view *services.MonthView) string {
	if len(view.Entries) > 0 {
		return ""
	}
	monthYear := i18n.MonthYear(lang, time.Month(q.Month+1), q.Year)
	switch {
	case view.DaysAway == 1:
		return i18n.T(lang, i18n.MsgMonthAwaySingular, map[string]string{"monthYear": monthYear})
	case view.DaysAway > 1:
		return i18n.T(lang, i18n.MsgMonthAway, map[string]string{
			"monthYear": monthYear,
			"days":      strconv.Itoa(view.DaysAway),
		})
	default:
		return i18n.T(lang, i18n.MsgNoEntries, map[string]string{"monthYear": monthYear})
	}
}

// ListEntries is the home timeline for a month.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q, err := h.monthQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.Entries.Month(r.Context(), currentUser(r), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		"message":     monthMessage(i18n.FromContext(r.Context()), q, view),
		"entries":     view.Entries,
		"marked_days": view.MarkedDays,
		"days_away":   view.DaysAway,
		"month":       q.Month,
		"year":        q.Year,
	})
}

func (h *Handler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	entries, err := h.Entries.Search(r.Context(), currentUser(r), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"entries": entries, "total": len(entries)})
}
