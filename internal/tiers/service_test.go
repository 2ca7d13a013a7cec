package tiers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	tiers map[uuid.UUID]TicketTier
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tiers: make(map[uuid.UUID]TicketTier)}
}

func (f *fakeRepo) Create(_ context.Context, t *TicketTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[t.ID] = *t
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tiers[id]
	if !ok {
		return nil, apperr.NotFound("tier_id", "tier %s not found", id)
	}
	return &t, nil
}

func (f *fakeRepo) ListByEventID(_ context.Context, eventID uuid.UUID) ([]TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TicketTier
	for _, t := range f.tiers {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TicketTier
	for _, t := range f.tiers {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepo) Update(_ context.Context, t *TicketTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[t.ID] = *t
	return nil
}

type fakeEvents map[uuid.UUID]bool

func (f fakeEvents) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f[id], nil
}

type fakeLedger map[int]int

func (f fakeLedger) BookedByBand(context.Context, uuid.UUID) (map[int]int, error) {
	return f, nil
}

type recordingListener struct {
	changed []uuid.UUID
}

func (r *recordingListener) TierChanged(_ context.Context, t *TicketTier) {
	r.changed = append(r.changed, t.ID)
}

func setup() (Service, *fakeRepo, uuid.UUID, *recordingListener) {
	eventID := uuid.New()
	repo := newFakeRepo()
	svc := NewService(repo, fakeEvents{eventID: true})
	listener := &recordingListener{}
	svc.SetChangeListener(listener)
	return svc, repo, eventID, listener
}

func TestCreateTier_WithBands(t *testing.T) {
	svc, repo, eventID, listener := setup()

	tier, err := svc.CreateTier(context.Background(), eventID, CreateTierRequest{
		Name:  "VIP",
		Color: "#ff0000",
		Bands: []PriceBand{{Price: 50000, Quantity: 5}, {Price: 80000, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, TierStatusPreparing, tier.Status)
	assert.Equal(t, 10, tier.TotalPool())
	assert.Len(t, repo.tiers, 1)
	assert.Equal(t, []uuid.UUID{tier.ID}, listener.changed)
}

func TestCreateTier_LegacyArrays(t *testing.T) {
	svc, _, eventID, _ := setup()

	tier, err := svc.CreateTier(context.Background(), eventID, CreateTierRequest{
		Name:       "GA",
		Prices:     []int64{100, 200},
		Quantities: []int{10, 5},
		Status:     "active",
	})
	require.NoError(t, err)
	assert.Equal(t, Bands{{Price: 100, Quantity: 10}, {Price: 200, Quantity: 5}}, tier.Bands)
	assert.Equal(t, TierStatusActive, tier.Status)
}

func TestCreateTier_LengthMismatchStoresNothing(t *testing.T) {
	svc, repo, eventID, _ := setup()

	_, err := svc.CreateTier(context.Background(), eventID, CreateTierRequest{
		Name:       "GA",
		Prices:     []int64{100, 200},
		Quantities: []int{10},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	appErr, _ := apperr.As(err)
	assert.Equal(t, "quantities", appErr.Field)
	assert.Empty(t, repo.tiers)
}

func TestCreateTier_ValidationErrors(t *testing.T) {
	svc, repo, eventID, _ := setup()
	ctx := context.Background()

	cases := map[string]CreateTierRequest{
		"empty name":     {Bands: []PriceBand{{Price: 1, Quantity: 1}}},
		"negative price": {Name: "A", Bands: []PriceBand{{Price: -1, Quantity: 1}}},
		"negative qty":   {Name: "A", Prices: []int64{1}, Quantities: []int{-3}},
		"unknown status": {Name: "A", Status: "archived"},
		"both shapes":    {Name: "A", Bands: []PriceBand{{Price: 1, Quantity: 1}}, Prices: []int64{1}, Quantities: []int{1}},
	}
	for name, req := range cases {
		_, err := svc.CreateTier(ctx, eventID, req)
		assert.True(t, errors.Is(err, apperr.ErrValidation), name)
	}
	assert.Empty(t, repo.tiers)
}

func TestCreateTier_UnknownEvent(t *testing.T) {
	svc, _, _, _ := setup()

	_, err := svc.CreateTier(context.Background(), uuid.New(), CreateTierRequest{Name: "A"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateTier_PartialPatch(t *testing.T) {
	svc, _, eventID, _ := setup()
	ctx := context.Background()
	tier, err := svc.CreateTier(ctx, eventID, CreateTierRequest{
		Name: "VIP", Color: "#ff0000", Bands: []PriceBand{{Price: 50000, Quantity: 5}},
	})
	require.NoError(t, err)

	name := "VIP Gold"
	active := "active"
	updated, err := svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Name: &name, Status: &active})
	require.NoError(t, err)
	assert.Equal(t, "VIP Gold", updated.Name)
	assert.Equal(t, "#ff0000", updated.Color)
	assert.Equal(t, TierStatusActive, updated.Status)
	assert.Equal(t, Bands{{Price: 50000, Quantity: 5}}, updated.Bands)
}

func TestUpdateTier_ReplacesBands(t *testing.T) {
	svc, _, eventID, _ := setup()
	ctx := context.Background()
	tier, err := svc.CreateTier(ctx, eventID, CreateTierRequest{Name: "VIP", Bands: []PriceBand{{Price: 1, Quantity: 1}}})
	require.NoError(t, err)

	updated, err := svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Prices: []int64{10, 20}, Quantities: []int{3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.TotalPool())
}

func TestUpdateTier_InvalidLeavesStoredState(t *testing.T) {
	svc, repo, eventID, _ := setup()
	ctx := context.Background()
	tier, err := svc.CreateTier(ctx, eventID, CreateTierRequest{Name: "VIP", Bands: []PriceBand{{Price: 1, Quantity: 1}}})
	require.NoError(t, err)

	_, err = svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Prices: []int64{10, 20}, Quantities: []int{3}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, Bands{{Price: 1, Quantity: 1}}, repo.tiers[tier.ID].Bands)
}

func TestUpdateTier_BandsBelowBookedRejected(t *testing.T) {
	svc, repo, eventID, listener := setup()
	ctx := context.Background()
	tier, err := svc.CreateTier(ctx, eventID, CreateTierRequest{
		Name: "General", Prices: []int64{100000}, Quantities: []int{10},
	})
	require.NoError(t, err)
	svc.SetLedger(fakeLedger{0: 8})
	listener.changed = nil

	_, err = svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Prices: []int64{100000}, Quantities: []int{3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "bands", appErr.Field)
	assert.Equal(t, Bands{{Price: 100000, Quantity: 10}}, repo.tiers[tier.ID].Bands)
	assert.Empty(t, listener.changed)

	updated, err := svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Prices: []int64{120000}, Quantities: []int{8}})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.TotalPool())
}

func TestUpdateTier_RemovingBookedBandRejected(t *testing.T) {
	svc, repo, eventID, _ := setup()
	ctx := context.Background()
	tier, err := svc.CreateTier(ctx, eventID, CreateTierRequest{
		Name: "VIP", Bands: []PriceBand{{Price: 50000, Quantity: 5}, {Price: 80000, Quantity: 5}},
	})
	require.NoError(t, err)
	svc.SetLedger(fakeLedger{1: 1})

	_, err = svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Bands: []PriceBand{{Price: 50000, Quantity: 20}}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
	assert.Len(t, repo.tiers[tier.ID].Bands, 2)

	svc.SetLedger(fakeLedger{0: 5, 1: 0})
	updated, err := svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Bands: []PriceBand{{Price: 50000, Quantity: 5}}})
	require.NoError(t, err)
	assert.Len(t, updated.Bands, 1)
}

func TestUpdateTier_NotFound(t *testing.T) {
	svc, _, _, _ := setup()
	name := "x"

	_, err := svc.UpdateTier(context.Background(), uuid.New(), UpdateTierRequest{Name: &name})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCancelTier_SoftDelete(t *testing.T) {
	svc, repo, eventID, _ := setup()
	ctx := context.Background()
	tier, err := svc.CreateTier(ctx, eventID, CreateTierRequest{Name: "VIP"})
	require.NoError(t, err)

	cancelled, err := svc.CancelTier(ctx, tier.ID)
	require.NoError(t, err)
	assert.Equal(t, TierStatusCancelled, cancelled.Status)
	assert.Contains(t, repo.tiers, tier.ID)

	again, err := svc.CancelTier(ctx, tier.ID)
	require.NoError(t, err)
	assert.Equal(t, TierStatusCancelled, again.Status)

	name := "revived"
	_, err = svc.UpdateTier(ctx, tier.ID, UpdateTierRequest{Name: &name})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
}

func TestListTiers(t *testing.T) {
	svc, _, eventID, _ := setup()
	ctx := context.Background()
	_, err := svc.CreateTier(ctx, eventID, CreateTierRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreateTier(ctx, eventID, CreateTierRequest{Name: "B"})
	require.NoError(t, err)

	list, err := svc.ListTiers(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListTiers(ctx, uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
