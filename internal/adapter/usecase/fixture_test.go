package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sponsorhub/internal/adapter/memory"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/core/port"
)

var (
	base     = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	adminCtx = domain.WithPrincipal(context.Background(), domain.Principal{UserID: "ops", Role: domain.RoleAdmin})
)

func sponsorCtx(id string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.Principal{UserID: "dash-" + id, Role: domain.RoleSponsor, SponsorID: id})
}

// tickClock advances one millisecond per read so events recorded "now"
// fall before any later billing instant.
func tickClock(start time.Time) func() time.Time {
	var n atomic.Int64
	return func() time.Time { return start.Add(time.Duration(n.Add(1)) * time.Millisecond) }
}

type fixture struct {
	store     *memory.Store
	sponsors  *SponsorUseCase
	slots     *SlotUseCase
	campaigns *CampaignUseCase
	analytics *AnalyticsUseCase
	billing   *BillingUseCase
}

type fixtureDeps struct {
	publisher port.ChangePublisher
	reminders port.ReminderSender
}

func newFixture(t *testing.T, deps fixtureDeps) *fixture {
	t.Helper()
	store := memory.NewStore()
	opts := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(tickClock(base)),
		WithRetry(3, time.Millisecond),
	}
	analytics := NewAnalyticsUseCase(store, store, opts...)
	return &fixture{
		store:     store,
		sponsors:  NewSponsorUseCase(store, store, store, opts...),
		slots:     NewSlotUseCase(store, store, store, deps.publisher, opts...),
		campaigns: NewCampaignUseCase(store, store, store, store, analytics, deps.publisher, opts...),
		analytics: analytics,
		billing:   NewBillingUseCase(store, store, store, analytics, deps.publisher, deps.reminders, 30, opts...),
	}
}

func (f *fixture) sponsor(t *testing.T, name string) domain.Sponsor {
	t.Helper()
	s, err := f.sponsors.CreateSponsor(adminCtx, port.SponsorInput{
		Name:          name,
		ContactPerson: "Riya Sen",
		Email:         "billing@" + name + ".example",
		Phone:         "+91 98100 00000",
		Tier:          "gold",
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) slot(t *testing.T, price int64) domain.AdSlot {
	t.Helper()
	s, err := f.slots.CreateSlot(adminCtx, port.SlotInput{
		Type:        "banner_bottom",
		DurationSec: 10,
		PriceModel:  "flat",
		PriceAmount: price,
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) campaign(t *testing.T, sponsorID string, in port.CampaignInput) domain.Campaign {
	t.Helper()
	in.SponsorID = sponsorID
	if in.Name == "" {
		in.Name = "Spring launch"
	}
	if in.CreativeURL == "" {
		in.CreativeURL = "https://cdn.example/spring.png"
	}
	c, err := f.campaigns.CreateCampaign(adminCtx, in)
	require.NoError(t, err)
	return c
}

func (f *fixture) record(t *testing.T, c domain.Campaign, typ domain.EventType, n int, at time.Time) {
	t.Helper()
	for range n {
		_, err := f.analytics.RecordEvent(adminCtx, port.EventInput{
			Type:       string(typ),
			CampaignID: c.ID,
			SlotID:     c.SlotIDs[0],
			OccurredAt: at,
		})
		require.NoError(t, err)
	}
}

func ptr[T any](v T) *T { return &v }
