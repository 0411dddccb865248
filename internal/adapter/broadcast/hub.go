// Package broadcast pushes live campaign and invoice state to connected
// dashboards over websockets.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"sponsorhub/internal/config/configs"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
	"sponsorhub/internal/metrics"
)

// Snapshot lists every campaign for a rebuild.
type Snapshot func(ctx context.Context) ([]domain.Campaign, error)

// Hub is the session registry. It implements port.ChangePublisher.
type Hub struct {
	snapshot     Snapshot
	logger       *slog.Logger
	queueSize    int
	writeTimeout time.Duration

	pending chan struct{}

	mu       sync.RWMutex
	sessions map[string]*session
}

var _ port.ChangePublisher = (*Hub)(nil)

// NewHub creates a hub. Run must be started for campaign rebuilds to be
// delivered.
func NewHub(snapshot Snapshot, cfg configs.Broadcast, logger *slog.Logger) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Hub{
		snapshot:     snapshot,
		logger:       logger.With("component", "broadcast"),
		queueSize:    cfg.QueueSize,
		writeTimeout: cfg.WriteTimeout,
		pending:      make(chan struct{}, 1),
		sessions:     make(map[string]*session),
	}
}

// CampaignsChanged schedules a rebuild. Signals arriving while one is
// pending collapse into it.
func (h *Hub) CampaignsChanged() {
	select {
	case h.pending <- struct{}{}:
	default:
	}
}

// InvoiceChanged pushes inv to the sessions allowed to see it.
func (h *Hub) InvoiceChanged(inv domain.Invoice) {
	frame, err := json.Marshal(invoiceMessage(inv))
	if err != nil {
		h.logger.Error("encode invoice update", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		if s.principal.CanSee(inv.SponsorID) {
			s.enqueue(frame)
		}
	}
}

// Run processes rebuild signals until ctx is done, then closes every
// session.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.pending:
			h.rebuild(ctx)
		}
	}
}

func (h *Hub) rebuild(ctx context.Context) {
	list, err := h.snapshot(ctx)
	if err != nil {
		h.logger.Warn("campaign snapshot failed", "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		h.send(s, campaignMessage(list, s.principal))
	}
}

func (h *Hub) send(s *session, msg CampaignUpdate) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode push message", "type", msg.Type, "error", err)
		return
	}
	s.enqueue(frame)
}

// Sessions reports the number of connected sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	metrics.BroadcastSessions.Inc()
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	h.mu.Unlock()
	if ok {
		metrics.BroadcastSessions.Dec()
	}
	s.close()
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.close()
	}
}

// Handler serves the websocket endpoint. The request context must carry the
// caller's principal; a fresh snapshot is sent on connect.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	ctx := conn.Request().Context()
	p, ok := domain.PrincipalFrom(ctx)
	if !ok {
		_ = conn.Close()
		return
	}

	s := newSession(uuid.NewString(), p, conn, h.queueSize, h.writeTimeout)
	h.add(s)
	defer h.remove(s)
	log := h.logger.With("session", s.id, "user", p.UserID, "role", p.Role)
	log.Debug("session opened")

	if list, err := h.snapshot(ctx); err != nil {
		log.Warn("initial snapshot failed", "error", err)
	} else {
		h.send(s, campaignMessage(list, p))
	}

	go s.readLoop()
	if err := s.writeLoop(); err != nil {
		log.Warn("session dropped", "error", err)
		return
	}
	log.Debug("session closed")
}
