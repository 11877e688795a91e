package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/adscope/pkg/domain"
)

func makeAd(url, title, price string, seen time.Time) domain.Ad {
	return domain.Ad{
		ID:          domain.AdID(url),
		URL:         url,
		Title:       title,
		Price:       price,
		FirstSeen:   seen,
		LastChecked: seen,
	}
}

func TestStore_Upsert(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	firstSeen := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	ad := makeAd("https://example.com/marketplace/item/1", "Leather sofa", "$150", firstSeen)

	// first sighting inserts
	res, err := s.Upsert(ctx, ad)
	require.NoError(t, err)
	assert.Equal(t, domain.Inserted, res)

	known, err := s.IsKnown(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, known)

	// second sighting updates, first_seen stays put
	later := firstSeen.Add(3 * time.Hour)
	ad2 := ad
	ad2.Title = "Leather sofa, price drop"
	ad2.Price = "$120"
	ad2.FirstSeen = later // ignored on update
	ad2.LastChecked = later

	res, err = s.Upsert(ctx, ad2)
	require.NoError(t, err)
	assert.Equal(t, domain.Updated, res)

	ads, err := s.Recent(ctx, firstSeen.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "Leather sofa, price drop", ads[0].Title)
	assert.Equal(t, "$120", ads[0].Price)
	assert.True(t, firstSeen.Equal(ads[0].FirstSeen), "first_seen preserved across updates")
	assert.True(t, later.Equal(ads[0].LastChecked))
}

func TestStore_Upsert_Concurrent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	ad := makeAd("https://example.com/marketplace/item/42", "Bike", "$80", now)

	// duplicate submissions of the same identity must not error out
	var group errgroup.Group
	for i := 0; i < 8; i++ {
		group.Go(func() error {
			_, err := s.Upsert(ctx, ad)
			return err
		})
	}
	require.NoError(t, group.Wait())

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_IsKnown(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	known, err := s.IsKnown(ctx, domain.AdID("https://example.com/never-seen"))
	require.NoError(t, err)
	assert.False(t, known)

	ad := makeAd("https://example.com/marketplace/item/7", "Desk", "$40", time.Now().UTC())
	_, err = s.Upsert(ctx, ad)
	require.NoError(t, err)

	known, err = s.IsKnown(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, known)
}

func TestStore_Recent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://example.com/marketplace/item/%d", i)
		ad := makeAd(url, fmt.Sprintf("item %d", i), "$5", base.Add(time.Duration(i)*time.Hour))
		_, err := s.Upsert(ctx, ad)
		require.NoError(t, err)
	}

	// window cuts off the two oldest rows
	ads, err := s.Recent(ctx, base.Add(90*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, ads, 3)

	// newest first
	assert.Equal(t, "item 4", ads[0].Title)
	assert.Equal(t, "item 3", ads[1].Title)
	assert.Equal(t, "item 2", ads[2].Title)

	// limit caps the result
	ads, err = s.Recent(ctx, base.Add(-time.Minute), 2)
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, "item 4", ads[0].Title)
}

func TestStore_Recent_Empty(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ads, err := s.Recent(context.Background(), time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, ads)
}

func TestStore_Prune(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	stale := makeAd("https://example.com/marketplace/item/old", "old listing", "$1", now.Add(-15*24*time.Hour))
	fresh := makeAd("https://example.com/marketplace/item/new", "new listing", "$2", now.Add(-time.Hour))

	_, err := s.Upsert(ctx, stale)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, fresh)
	require.NoError(t, err)

	deleted, err := s.Prune(ctx, 14*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	known, err := s.IsKnown(ctx, stale.ID)
	require.NoError(t, err)
	assert.False(t, known, "stale row pruned")

	known, err = s.IsKnown(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, known, "fresh row kept")

	// nothing left to prune
	deleted, err = s.Prune(ctx, 14*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestStore_Count(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		ad := makeAd(fmt.Sprintf("https://example.com/marketplace/item/c%d", i), "x", "$1", now)
		_, err := s.Upsert(ctx, ad)
		require.NoError(t, err)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
