package httpadapter

import (
	"net/http"
	"sort"
	"time"

	"sponsorhub/internal/core/port"
)

type eventRequest struct {
	Type       string    `json:"type"`
	CampaignID string    `json:"campaignId"`
	SlotID     string    `json:"slotId"`
	OccurredAt *flexTime `json:"occurredAt"`
	WatchMs    int64     `json:"watchMs"`
}

func (e eventRequest) input() port.EventInput {
	in := port.EventInput{Type: e.Type, CampaignID: e.CampaignID, SlotID: e.SlotID, WatchMs: e.WatchMs}
	if e.OccurredAt != nil {
		in.OccurredAt = e.OccurredAt.Time
	}
	return in
}

type bulkEventsRequest struct {
	Events []eventRequest `json:"events"`
}

type eventResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CampaignID string    `json:"campaignId"`
	SlotID     string    `json:"slotId"`
	OccurredAt time.Time `json:"occurredAt"`
	WatchMs    int64     `json:"watchMs,omitempty"`
}

type rejectedEvent struct {
	Index int `json:"index"`
	errorResponse
}

type bulkEventsResponse struct {
	Accepted []string        `json:"accepted"`
	Rejected []rejectedEvent `json:"rejected"`
}

// handleRecordEvent appends one delivery observation to the ledger.
func (h *Handler) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	e, err := h.svc.Analytics.RecordEvent(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, eventResponse{
		ID:         e.ID,
		Type:       string(e.Type),
		CampaignID: e.CampaignID,
		SlotID:     e.SlotID,
		OccurredAt: e.OccurredAt,
		WatchMs:    e.WatchMs,
	})
}

// handleRecordEvents accepts a batch. Valid events are recorded even when
// others are rejected; per-index errors are reported in the body.
func (h *Handler) handleRecordEvents(w http.ResponseWriter, r *http.Request) {
	var req bulkEventsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in := make([]port.EventInput, len(req.Events))
	for i, e := range req.Events {
		in[i] = e.input()
	}
	res, err := h.svc.Analytics.RecordEvents(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := bulkEventsResponse{Accepted: res.Accepted, Rejected: []rejectedEvent{}}
	if out.Accepted == nil {
		out.Accepted = []string{}
	}
	for i, e := range res.Errors {
		_, body := h.errorBody(r, e)
		out.Rejected = append(out.Rejected, rejectedEvent{Index: i, errorResponse: body})
	}
	sort.Slice(out.Rejected, func(a, b int) bool { return out.Rejected[a].Index < out.Rejected[b].Index })

	status := http.StatusCreated
	if len(out.Rejected) > 0 {
		status = http.StatusMultiStatus
	}
	h.writeJSON(w, status, out)
}
