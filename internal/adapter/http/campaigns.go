package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

type campaignRequest struct {
	Name          string    `json:"name"`
	SponsorID     string    `json:"sponsorId"`
	SlotIDs       []string  `json:"slotIds"`
	CreativeURL   string    `json:"creativeUrl"`
	StartDate     *flexTime `json:"startDate"`
	EndDate       *flexTime `json:"endDate"`
	ImpressionCap *int64    `json:"impressionCap"`
	PricingModel  string    `json:"pricingModel"`
	PriceAmount   *int64    `json:"priceAmount"`
	Status        string    `json:"status"`
}

// campaignPatchRequest: an absent slotIds keeps the slots, an empty array
// clears them.
type campaignPatchRequest struct {
	Name          *string   `json:"name"`
	SlotIDs       []string  `json:"slotIds"`
	CreativeURL   *string   `json:"creativeUrl"`
	StartDate     *flexTime `json:"startDate"`
	EndDate       *flexTime `json:"endDate"`
	ImpressionCap *int64    `json:"impressionCap"`
	PricingModel  *string   `json:"pricingModel"`
	PriceAmount   *int64    `json:"priceAmount"`
	Status        *string   `json:"status"`
	NeedsReview   *bool     `json:"needsReview"`
}

type campaignResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	SponsorID            string     `json:"sponsorId"`
	SlotIDs              []string   `json:"slotIds"`
	CreativeURL          string     `json:"creativeUrl"`
	StartDate            *time.Time `json:"startDate,omitempty"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	ImpressionCap        *int64     `json:"impressionCap,omitempty"`
	PricingModel         string     `json:"pricingModel"`
	PriceAmount          int64      `json:"priceAmount"`
	Status               string     `json:"status"`
	NeedsReview          bool       `json:"needsReview"`
	TotalSpend           int64      `json:"totalSpend"`
	DeliveredImpressions int64      `json:"deliveredImpressions"`
	TotalsRefreshedAt    *time.Time `json:"totalsRefreshedAt,omitempty"`
	Version              int64      `json:"version"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	slots := c.SlotIDs
	if slots == nil {
		slots = []string{}
	}
	return campaignResponse{
		ID:                   c.ID,
		Name:                 c.Name,
		SponsorID:            c.SponsorID,
		SlotIDs:              slots,
		CreativeURL:          c.CreativeURL,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		ImpressionCap:        c.ImpressionCap,
		PricingModel:         string(c.PricingModel),
		PriceAmount:          int64(c.PriceAmount),
		Status:               string(c.Status),
		NeedsReview:          c.NeedsReview,
		TotalSpend:           int64(c.TotalSpend),
		DeliveredImpressions: c.DeliveredImpressions,
		TotalsRefreshedAt:    c.TotalsRefreshedAt,
		Version:              c.Version,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Campaigns.CreateCampaign(r.Context(), port.CampaignInput{
		Name:          req.Name,
		SponsorID:     req.SponsorID,
		SlotIDs:       req.SlotIDs,
		CreativeURL:   req.CreativeURL,
		StartDate:     req.StartDate.ptr(),
		EndDate:       req.EndDate.ptr(),
		ImpressionCap: req.ImpressionCap,
		PricingModel:  req.PricingModel,
		PriceAmount:   req.PriceAmount,
		Status:        req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCampaignResponse(c))
}

func (h *Handler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignPatchRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Campaigns.UpdateCampaign(r.Context(), chi.URLParam(r, "id"), port.CampaignPatch{
		Name:          req.Name,
		SlotIDs:       req.SlotIDs,
		CreativeURL:   req.CreativeURL,
		StartDate:     req.StartDate.ptr(),
		EndDate:       req.EndDate.ptr(),
		ImpressionCap: req.ImpressionCap,
		PricingModel:  req.PricingModel,
		PriceAmount:   req.PriceAmount,
		Status:        req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

func (h *Handler) handleCampaignAction(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "action")
	action, ok := domain.ParseAction(raw)
	if !ok {
		h.writeError(w, r, badParam("action", raw))
		return
	}
	c, err := h.svc.Campaigns.TransitionCampaign(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

func (h *Handler) handleRefreshCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Campaigns.RefreshTotals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Campaigns.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Campaigns.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := port.CampaignFilter{SponsorID: q.Get("sponsorId"), SlotID: q.Get("slotId")}
	for _, v := range queryList(r, "status") {
		st, ok := domain.ParseCampaignStatus(v)
		if !ok {
			h.writeError(w, r, badParam("status", v))
			return
		}
		f.Statuses = append(f.Statuses, st)
	}
	from, err := queryTime(r, "from")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}

	list, err := h.svc.Campaigns.ListCampaigns(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]campaignResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCampaignResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}
