package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

type sponsorRequest struct {
	Name          string  `json:"name"`
	ContactPerson string  `json:"contactPerson"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	TaxID         *string `json:"taxId"`
	Tier          string  `json:"tier"`
	LogoURL       *string `json:"logoUrl"`
	AgentID       *string `json:"agentId"`
}

type sponsorPatchRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	TaxID         *string `json:"taxId"`
	Tier          *string `json:"tier"`
	LogoURL       *string `json:"logoUrl"`
	AgentID       *string `json:"agentId"`
}

type sponsorResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	TaxID         *string   `json:"taxId,omitempty"`
	Tier          string    `json:"tier"`
	LogoURL       *string   `json:"logoUrl,omitempty"`
	AgentID       *string   `json:"agentId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toSponsorResponse(s domain.Sponsor) sponsorResponse {
	return sponsorResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		TaxID:         s.TaxID,
		Tier:          string(s.Tier),
		LogoURL:       s.LogoURL,
		AgentID:       s.AgentID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (h *Handler) handleCreateSponsor(w http.ResponseWriter, r *http.Request) {
	var req sponsorRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Sponsors.CreateSponsor(r.Context(), port.SponsorInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		TaxID:         req.TaxID,
		Tier:          req.Tier,
		LogoURL:       req.LogoURL,
		AgentID:       req.AgentID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toSponsorResponse(s))
}

func (h *Handler) handleUpdateSponsor(w http.ResponseWriter, r *http.Request) {
	var req sponsorPatchRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Sponsors.UpdateSponsor(r.Context(), chi.URLParam(r, "id"), port.SponsorPatch{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		TaxID:         req.TaxID,
		Tier:          req.Tier,
		LogoURL:       req.LogoURL,
		AgentID:       req.AgentID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSponsorResponse(s))
}

func (h *Handler) handleDeleteSponsor(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Sponsors.DeleteSponsor(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetSponsor(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Sponsors.GetSponsor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSponsorResponse(s))
}

func (h *Handler) handleListSponsors(w http.ResponseWriter, r *http.Request) {
	f := port.SponsorFilter{Query: r.URL.Query().Get("q")}
	if v := r.URL.Query().Get("tier"); v != "" {
		tier, ok := domain.ParseTier(v)
		if !ok {
			h.writeError(w, r, badParam("tier", v))
			return
		}
		f.Tier = tier
	}
	list, err := h.svc.Sponsors.ListSponsors(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]sponsorResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSponsorResponse(s))
	}
	h.writeJSON(w, http.StatusOK, out)
}
