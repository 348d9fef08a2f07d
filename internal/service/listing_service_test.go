package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truckbay-api/internal/apperr"
	"truckbay-api/internal/model"
)

type fakeListingStore struct {
	listings map[int]*model.Listing
	nextID   int
	images   map[int][]string
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{
		listings: map[int]*model.Listing{},
		nextID:   1,
		images:   map[int][]string{},
	}
}

func (f *fakeListingStore) Create(ctx context.Context, l *model.Listing) error {
	l.ID = f.nextID
	f.nextID++
	saved := *l
	f.listings[l.ID] = &saved
	return nil
}

func (f *fakeListingStore) GetByID(ctx context.Context, id int) (*model.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, apperr.NotFound("listing not found")
	}
	copied := *l
	return &copied, nil
}

func (f *fakeListingStore) List(ctx context.Context, dealerID int, status string, limit, offset int) ([]model.Listing, int, error) {
	var out []model.Listing
	for _, l := range f.listings {
		if dealerID > 0 && l.DealerID != dealerID {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeListingStore) Update(ctx context.Context, l *model.Listing) error {
	if _, ok := f.listings[l.ID]; !ok {
		return apperr.NotFound("listing not found")
	}
	saved := *l
	f.listings[l.ID] = &saved
	return nil
}

func (f *fakeListingStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.listings[id]; !ok {
		return apperr.NotFound("listing not found")
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeListingStore) AddImageURL(ctx context.Context, id int, url string) error {
	if _, ok := f.listings[id]; !ok {
		return apperr.NotFound("listing not found")
	}
	f.images[id] = append(f.images[id], url)
	return nil
}

type fakeFailureRecorder struct {
	recorded []*model.EnrichmentFailure
}

func (f *fakeFailureRecorder) Record(ctx context.Context, failure *model.EnrichmentFailure) error {
	f.recorded = append(f.recorded, failure)
	return nil
}

type fakeEnricher struct {
	result *model.EnrichmentResult
	err    error
}

func (f *fakeEnricher) Enrich(ctx context.Context, vin string) (*model.EnrichmentResult, error) {
	return f.result, f.err
}

func enrichedF550() *model.EnrichmentResult {
	return &model.EnrichmentResult{
		VinDecodeResult: model.VinDecodeResult{
			VIN:   "1FDUF5GT5KDA12345",
			Year:  2019,
			Make:  "FORD",
			Model: "F-550",
		},
		Metadata: model.EnrichmentMetadata{DataSources: []string{"nhtsa"}},
	}
}

func TestListingCreate_EnrichesAndPersists(t *testing.T) {
	store := newFakeListingStore()
	svc := NewListingService(store, &fakeEnricher{result: enrichedF550()}, &fakeFailureRecorder{})

	listing, err := svc.Create(context.Background(), model.CreateListingRequest{
		DealerID: 3,
		VIN:      "1fduf5gt5kda12345",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, listing.ID)
	assert.Equal(t, "1FDUF5GT5KDA12345", listing.VIN)
	assert.Equal(t, 2019, listing.Year)
	assert.Equal(t, "F-550", listing.Model)
	assert.Equal(t, model.ListingStatusDraft, listing.Status)
	require.NotNil(t, listing.Attributes)
}

func TestListingCreate_ValidatesInput(t *testing.T) {
	svc := NewListingService(newFakeListingStore(), &fakeEnricher{result: enrichedF550()}, nil)

	_, err := svc.Create(context.Background(), model.CreateListingRequest{DealerID: 3, VIN: "SHORT"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = svc.Create(context.Background(), model.CreateListingRequest{DealerID: 0, VIN: "1FDUF5GT5KDA12345"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestListingCreate_EnrichmentFailureDegrades(t *testing.T) {
	store := newFakeListingStore()
	failures := &fakeFailureRecorder{}
	enricher := &fakeEnricher{err: apperr.UpstreamTimeout("registry timed out", nil)}
	svc := NewListingService(store, enricher, failures)

	listing, err := svc.Create(context.Background(), model.CreateListingRequest{
		DealerID: 3,
		VIN:      "1FDUF5GT5KDA12345",
	})
	require.NoError(t, err, "enrichment failure must not block listing creation")

	assert.Nil(t, listing.Attributes)
	assert.Zero(t, listing.Year)

	require.Len(t, failures.recorded, 1)
	assert.Equal(t, listing.ID, failures.recorded[0].ListingID)
	assert.Equal(t, "upstream_timeout", failures.recorded[0].ErrorKind)
}

func TestListingUpdate_StatusWhitelist(t *testing.T) {
	store := newFakeListingStore()
	svc := NewListingService(store, &fakeEnricher{result: enrichedF550()}, nil)

	listing, err := svc.Create(context.Background(), model.CreateListingRequest{
		DealerID: 3, VIN: "1FDUF5GT5KDA12345",
	})
	require.NoError(t, err)

	published := model.ListingStatusPublished
	updated, err := svc.Update(context.Background(), listing.ID, model.UpdateListingRequest{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, "published", updated.Status)

	bogus := "archived"
	_, err = svc.Update(context.Background(), listing.ID, model.UpdateListingRequest{Status: &bogus})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestListingUpdate_MissingListing(t *testing.T) {
	svc := NewListingService(newFakeListingStore(), &fakeEnricher{result: enrichedF550()}, nil)

	price := 45000.0
	_, err := svc.Update(context.Background(), 42, model.UpdateListingRequest{Price: &price})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListingList_ClampsLimit(t *testing.T) {
	store := newFakeListingStore()
	svc := NewListingService(store, &fakeEnricher{result: enrichedF550()}, nil)

	resp, err := svc.List(context.Background(), 0, "", -5, -1)
	require.NoError(t, err)
	assert.NotNil(t, resp.Listings)
	assert.Zero(t, resp.Total)
}

func TestAttachImage_RequiresExistingListing(t *testing.T) {
	store := newFakeListingStore()
	svc := NewListingService(store, &fakeEnricher{result: enrichedF550()}, nil)

	err := svc.AttachImage(context.Background(), 42, "https://cdn.example.com/x.jpg")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	listing, err := svc.Create(context.Background(), model.CreateListingRequest{
		DealerID: 3, VIN: "1FDUF5GT5KDA12345",
	})
	require.NoError(t, err)

	require.NoError(t, svc.AttachImage(context.Background(), listing.ID, "https://cdn.example.com/x.jpg"))
	assert.Equal(t, []string{"https://cdn.example.com/x.jpg"}, store.images[listing.ID])
}
