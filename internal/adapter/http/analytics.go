package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"

	"sponsorhub/internal/core/port"
)

type summaryResponse struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	WatchTimeMs int64   `json:"watchTimeMs"`
	CTR         float64 `json:"ctr"`
}

type seriesPointResponse struct {
	Date        string   `json:"date"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	WatchTimeMs int64    `json:"watchTimeMs"`
	CTR         *float64 `json:"ctr,omitempty"`
}

// analyticsQuery reads sponsorId, campaignId, from and to. Missing bounds
// are left zero for the use case to default.
func analyticsQuery(r *http.Request) (port.AnalyticsFilter, port.DateRange, error) {
	q := r.URL.Query()
	f := port.AnalyticsFilter{SponsorID: q.Get("sponsorId"), CampaignID: q.Get("campaignId")}
	from, err := queryTime(r, "from")
	if err != nil {
		return f, port.DateRange{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return f, port.DateRange{}, err
	}
	return f, port.DateRange{From: from, To: to}, nil
}

func (h *Handler) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	f, rng, err := analyticsQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.Analytics.Summarize(r.Context(), f, rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summaryResponse{
		Impressions: s.Impressions,
		Clicks:      s.Clicks,
		WatchTimeMs: s.WatchTimeMs,
		CTR:         s.CTR,
	})
}

func (h *Handler) handleAnalyticsReport(w http.ResponseWriter, r *http.Request) {
	f, rng, err := analyticsQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	withCTR, err := queryBool(r, "ctr")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	points, err := h.svc.Analytics.TimeSeries(r.Context(), f, rng, withCTR != nil && *withCTR)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]seriesPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, seriesPointResponse{
			Date:        p.Date.Format(dateLayout),
			Impressions: p.Impressions,
			Clicks:      p.Clicks,
			WatchTimeMs: p.WatchTimeMs,
			CTR:         p.CTR,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleAnalyticsExport renders the report as CSV. The body is buffered so
// a failure can still be answered with a proper status.
func (h *Handler) handleAnalyticsExport(w http.ResponseWriter, r *http.Request) {
	f, rng, err := analyticsQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err = h.svc.Analytics.ExportCSV(r.Context(), &buf, f, rng); err != nil {
		h.writeError(w, r, err)
		return
	}
	name := "analytics"
	if f.CampaignID != "" {
		name += "-" + f.CampaignID
	} else if f.SponsorID != "" {
		name += "-" + f.SponsorID
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err = buf.WriteTo(w); err != nil {
		h.logger.Warn("write csv export", "error", err)
	}
}
