package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

type invoiceRequest struct {
	SponsorID   string    `json:"sponsorId"`
	CampaignIDs []string  `json:"campaignIds"`
	DueDate     *flexTime `json:"dueDate"`
}

type invoiceLineResponse struct {
	CampaignID   string     `json:"campaignId"`
	PricingModel string     `json:"pricingModel"`
	Rate         int64      `json:"rate"`
	Quantity     int64      `json:"quantity"`
	Amount       int64      `json:"amount"`
	BilledFrom   *time.Time `json:"billedFrom,omitempty"`
	BilledUntil  time.Time  `json:"billedUntil"`
}

type invoiceResponse struct {
	ID        string                `json:"id"`
	SponsorID string                `json:"sponsorId"`
	Lines     []invoiceLineResponse `json:"lines"`
	Total     int64                 `json:"total"`
	Status    string                `json:"status"`
	DueDate   time.Time             `json:"dueDate"`
	CreatedAt time.Time             `json:"createdAt"`
	PaidAt    *time.Time            `json:"paidAt,omitempty"`
}

func toInvoiceResponse(inv domain.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:        inv.ID,
		SponsorID: inv.SponsorID,
		Lines:     make([]invoiceLineResponse, 0, len(inv.Lines)),
		Total:     int64(inv.Total),
		Status:    string(inv.Status),
		DueDate:   inv.DueDate,
		CreatedAt: inv.CreatedAt,
		PaidAt:    inv.PaidAt,
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, invoiceLineResponse{
			CampaignID:   l.CampaignID,
			PricingModel: string(l.PricingModel),
			Rate:         int64(l.Rate),
			Quantity:     l.Quantity,
			Amount:       int64(l.Amount),
			BilledFrom:   l.BilledFrom,
			BilledUntil:  l.BilledUntil,
		})
	}
	return resp
}

func (h *Handler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.svc.Billing.CreateInvoice(r.Context(), port.InvoiceInput{
		SponsorID:   req.SponsorID,
		CampaignIDs: req.CampaignIDs,
		DueDate:     req.DueDate.ptr(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (h *Handler) handlePayInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Billing.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) handleSendInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Billing.SendInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Billing.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := port.InvoiceFilter{SponsorID: q.Get("sponsorId"), CampaignID: q.Get("campaignId")}
	for _, v := range queryList(r, "status") {
		st, ok := domain.ParseInvoiceStatus(v)
		if !ok {
			h.writeError(w, r, badParam("status", v))
			return
		}
		f.Statuses = append(f.Statuses, st)
	}
	list, err := h.svc.Billing.ListInvoices(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]invoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv))
	}
	h.writeJSON(w, http.StatusOK, out)
}
