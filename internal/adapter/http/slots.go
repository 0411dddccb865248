package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

type slotRequest struct {
	Type        string  `json:"type"`
	DurationSec int     `json:"durationSec"`
	PriceModel  string  `json:"priceModel"`
	PriceAmount int64   `json:"priceAmount"`
	SponsorLock *string `json:"sponsorLock"`
	CreativeURL *string `json:"creativeUrl"`
	Active      *bool   `json:"active"`
}

type slotPatchRequest struct {
	Type        *string `json:"type"`
	DurationSec *int    `json:"durationSec"`
	PriceModel  *string `json:"priceModel"`
	PriceAmount *int64  `json:"priceAmount"`
	SponsorLock *string `json:"sponsorLock"`
	CreativeURL *string `json:"creativeUrl"`
	Active      *bool   `json:"active"`
}

type slotResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	DurationSec int       `json:"durationSec"`
	PriceModel  string    `json:"priceModel"`
	PriceAmount int64     `json:"priceAmount"`
	SponsorLock *string   `json:"sponsorLock,omitempty"`
	CreativeURL *string   `json:"creativeUrl,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toSlotResponse(s domain.AdSlot) slotResponse {
	return slotResponse{
		ID:          s.ID,
		Type:        string(s.Type),
		DurationSec: s.DurationSec,
		PriceModel:  string(s.PriceModel),
		PriceAmount: int64(s.PriceAmount),
		SponsorLock: s.SponsorLock,
		CreativeURL: s.CreativeURL,
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (h *Handler) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Slots.CreateSlot(r.Context(), port.SlotInput{
		Type:        req.Type,
		DurationSec: req.DurationSec,
		PriceModel:  req.PriceModel,
		PriceAmount: req.PriceAmount,
		SponsorLock: req.SponsorLock,
		CreativeURL: req.CreativeURL,
		Active:      req.Active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toSlotResponse(s))
}

func (h *Handler) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	var req slotPatchRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Slots.UpdateSlot(r.Context(), chi.URLParam(r, "id"), port.SlotPatch{
		Type:        req.Type,
		DurationSec: req.DurationSec,
		PriceModel:  req.PriceModel,
		PriceAmount: req.PriceAmount,
		SponsorLock: req.SponsorLock,
		CreativeURL: req.CreativeURL,
		Active:      req.Active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSlotResponse(s))
}

func (h *Handler) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Slots.DeleteSlot(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Slots.GetSlot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSlotResponse(s))
}

func (h *Handler) handleListSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := port.SlotFilter{SponsorID: q.Get("sponsorId")}
	if v := q.Get("type"); v != "" {
		t, ok := domain.ParseSlotType(v)
		if !ok {
			h.writeError(w, r, badParam("type", v))
			return
		}
		f.Type = t
	}
	active, err := queryBool(r, "active")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f.Active = active

	list, err := h.svc.Slots.ListSlots(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]slotResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSlotResponse(s))
	}
	h.writeJSON(w, http.StatusOK, out)
}
