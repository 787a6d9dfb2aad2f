package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/engine"
)

type SlotsHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSlotsHandler(eng *engine.Engine, logger *slog.Logger) *SlotsHandler {
	return &SlotsHandler{engine: eng, logger: logger}
}

type slotsResponse struct {
	Slots           map[string][]engine.Slot `json:"slots"`
	Troubleshooting *engine.Troubleshooting  `json:"troubleshooting,omitempty"`
}

// Get handles GET /api/v1/slots. The event is identified by eventTypeId,
// by teamSlug+eventTypeSlug, or by a comma-separated usernames list for
// dynamic group bookings.
func (h *SlotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()

	req := engine.Request{
		TeamSlug:            strings.TrimSpace(q.Get("teamSlug")),
		EventTypeSlug:       strings.TrimSpace(q.Get("eventTypeSlug")),
		TimeZone:            strings.TrimSpace(q.Get("timeZone")),
		ContactOwnerEmail:   strings.TrimSpace(q.Get("contactOwnerEmail")),
		WithTroubleshooting: q.Get("troubleshooting") == "true",
	}
	if req.TimeZone == "" {
		req.TimeZone = "UTC"
	}

	if raw := strings.TrimSpace(q.Get("eventTypeId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid eventTypeId", http.StatusBadRequest)
			return
		}
		req.EventTypeID = id
	}
	if raw := strings.TrimSpace(q.Get("usernames")); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				req.Usernames = append(req.Usernames, u)
			}
		}
	}
	if raw := strings.TrimSpace(q.Get("routedTeamMemberIds")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				http.Error(w, "invalid routedTeamMemberIds", http.StatusBadRequest)
				return
			}
			req.RoutedTeamMemberIDs = append(req.RoutedTeamMemberIDs, id)
		}
	}
	if raw := strings.TrimSpace(q.Get("duration")); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins <= 0 {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
		req.Duration = time.Duration(mins) * time.Minute
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("start")))
	if err != nil {
		http.Error(w, "invalid start: RFC 3339 timestamp required", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(q.Get("end")))
	if err != nil {
		http.Error(w, "invalid end: RFC 3339 timestamp required", http.StatusBadRequest)
		return
	}
	req.Start = start
	req.End = end

	result, err := h.engine.GetAvailableSlots(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(slotsResponse{
		Slots:           result.Slots,
		Troubleshooting: result.Troubleshooting,
	})
}

func (h *SlotsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *engine.Error
	msg := "internal error"
	status := http.StatusInternalServerError
	switch engine.KindOf(err) {
	case engine.KindNotFound:
		status = http.StatusNotFound
	case engine.KindBadRequest:
		status = http.StatusBadRequest
	case engine.KindUnauthorized:
		status = http.StatusUnauthorized
	default:
		h.logger.Error("slot computation failed", "path", r.URL.Path, "err", err)
		http.Error(w, msg, status)
		return
	}
	if errors.As(err, &e) {
		msg = e.Message
	}
	http.Error(w, msg, status)
}
