package filter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/testutil"
)

var letters = []entity.EnergyRating{"A", "B", "C", "D", "E", "F", "G"}

func sampleListings() []entity.ListingRecord {
	statuses := []entity.EnergyRating{"A", "C", "E", "G", entity.EnergyPending, entity.EnergyExempt, entity.EnergyNotIndicated, ""}
	owners := []entity.OwnerType{entity.OwnerIndividual, entity.OwnerAgency, entity.OwnerUnknown}

	var out []entity.ListingRecord
	for i := 0; i < 24; i++ {
		out = append(out, entity.ListingRecord{
			ID:           fmt.Sprintf("%d", 100+i),
			Title:        fmt.Sprintf("Piso %d", i),
			Price:        float64(600 + 50*i),
			SizeSqm:      (i % 5) * 20,
			Rooms:        i % 4,
			EnergyRating: statuses[i%len(statuses)],
			OwnerType:    owners[i%len(owners)],
		})
	}
	return out
}

func specs() []entity.FilterSpec {
	return []entity.FilterSpec{
		{},
		{MaxPrice: 1000},
		{MinSize: 40, MinRooms: 2},
		{OwnerType: entity.OwnerIndividual},
		{OwnerType: OwnerAll, MaxPrice: 900},
		{MinEnergyRating: "C"},
		{RequireEnergyCert: true, MinEnergyRating: "E"},
		{ListingIDs: []string{"101", "105", "999"}},
		{SmartFilter: &entity.SmartFilter{Keywords: []string{"piso 1"}}},
	}
}

func applyTo(t *testing.T, page *testutil.FakePage, spec entity.FilterSpec) entity.FilterResult {
	t.Helper()

	ctx := context.Background()
	elements, err := page.QueryListings(ctx)
	require.NoError(t, err)

	items := make([]Item, len(elements))
	for i, el := range elements {
		rec, err := page.ExtractFields(ctx, el)
		require.NoError(t, err)
		items[i] = Item{Element: el, Record: rec}
	}

	result, err := NewEngine(page, testutil.NopLogger{}).Apply(ctx, items, spec)
	require.NoError(t, err)
	return result
}

func TestApply_PartitionsListings(t *testing.T) {
	for i, spec := range specs() {
		t.Run(fmt.Sprintf("spec_%d", i), func(t *testing.T) {
			page := testutil.NewFakePage("https://www.idealista.com/alquiler-viviendas/madrid/", sampleListings()...)

			result := applyTo(t, page, spec)

			assert.Equal(t, len(page.Listings), result.Shown+result.Hidden)
			assert.Len(t, page.VisibleIDs(), result.Shown)
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	for i, spec := range specs() {
		t.Run(fmt.Sprintf("spec_%d", i), func(t *testing.T) {
			page := testutil.NewFakePage("https://www.idealista.com/", sampleListings()...)

			first := applyTo(t, page, spec)
			second := applyTo(t, page, spec)

			assert.Equal(t, first, second)
		})
	}
}

func TestApply_MaxPriceScenario(t *testing.T) {
	var listings []entity.ListingRecord
	expensive := map[string]bool{}
	for i := 0; i < 20; i++ {
		price := 800.0
		id := fmt.Sprintf("id-%d", i)
		if i%4 == 0 {
			price = 1200
			expensive[id] = true
		}
		listings = append(listings, entity.ListingRecord{ID: id, Price: price, OwnerType: entity.OwnerUnknown})
	}
	page := testutil.NewFakePage("https://www.idealista.com/", listings...)

	result := applyTo(t, page, entity.FilterSpec{MaxPrice: 1000})

	assert.Equal(t, entity.FilterResult{Shown: 15, Hidden: 5}, result)
	for i, l := range page.Listings {
		assert.Equal(t, expensive[l.ID], page.Hidden[i], "listing %s", l.ID)
	}
}

func TestEvaluate_EnergyOrdering(t *testing.T) {
	for _, minRating := range letters {
		for _, rating := range letters {
			l := entity.ListingRecord{ID: "1", EnergyRating: rating}
			shown := Evaluate(l, entity.FilterSpec{MinEnergyRating: minRating})
			assert.Equal(t, rating.Rank() <= minRating.Rank(), shown, "min=%s rating=%s", minRating, rating)
		}

		for _, status := range []entity.EnergyRating{entity.EnergyPending, entity.EnergyExempt, entity.EnergyNotIndicated, ""} {
			l := entity.ListingRecord{ID: "1", EnergyRating: status}
			assert.True(t, Evaluate(l, entity.FilterSpec{MinEnergyRating: minRating}), "status %q", status)
		}
	}
}

func TestEvaluate_RequireEnergyCert(t *testing.T) {
	all := append(append([]entity.EnergyRating{}, letters...), entity.EnergyPending, entity.EnergyExempt, entity.EnergyNotIndicated, "")

	for _, minRating := range []entity.EnergyRating{"", "G"} {
		for _, rating := range all {
			l := entity.ListingRecord{ID: "1", EnergyRating: rating}
			shown := Evaluate(l, entity.FilterSpec{RequireEnergyCert: true, MinEnergyRating: minRating})
			assert.Equal(t, rating.IsCertified(), shown, "min=%q rating=%q", minRating, rating)
		}
	}
}

func TestEvaluate_SmartFilter(t *testing.T) {
	l := entity.ListingRecord{ID: "1", Title: "Piso en Chamberí", Description: "Piso muy LUMINOSO, interior"}

	include := entity.FilterSpec{SmartFilter: &entity.SmartFilter{Keywords: []string{"luminoso"}}}
	assert.True(t, Evaluate(l, include))

	include.SmartFilter.ExcludeKeywords = []string{"interior"}
	assert.False(t, Evaluate(l, include))

	noMatch := entity.FilterSpec{SmartFilter: &entity.SmartFilter{Keywords: []string{"terraza", "ático"}}}
	assert.False(t, Evaluate(l, noMatch))

	excludeOnly := entity.FilterSpec{SmartFilter: &entity.SmartFilter{ExcludeKeywords: []string{"sótano"}}}
	assert.True(t, Evaluate(l, excludeOnly))
}

func TestEvaluate_ScalarPredicates(t *testing.T) {
	tests := []struct {
		name    string
		listing entity.ListingRecord
		spec    entity.FilterSpec
		want    bool
	}{
		{"unknown owner kept", entity.ListingRecord{OwnerType: entity.OwnerUnknown}, entity.FilterSpec{OwnerType: entity.OwnerIndividual}, true},
		{"agency hidden", entity.ListingRecord{OwnerType: entity.OwnerAgency}, entity.FilterSpec{OwnerType: entity.OwnerIndividual}, false},
		{"all disables owner", entity.ListingRecord{OwnerType: entity.OwnerAgency}, entity.FilterSpec{OwnerType: OwnerAll}, true},
		{"unknown price kept", entity.ListingRecord{}, entity.FilterSpec{MaxPrice: 500}, true},
		{"price at limit", entity.ListingRecord{Price: 1000}, entity.FilterSpec{MaxPrice: 1000}, true},
		{"unknown size hidden", entity.ListingRecord{}, entity.FilterSpec{MinSize: 50}, false},
		{"rooms below", entity.ListingRecord{Rooms: 1}, entity.FilterSpec{MinRooms: 2}, false},
		{"allowlist wins", entity.ListingRecord{ID: "7", Price: 5000}, entity.FilterSpec{MaxPrice: 100, ListingIDs: []string{"7"}}, true},
		{"allowlist miss", entity.ListingRecord{ID: "8"}, entity.FilterSpec{ListingIDs: []string{"7"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.listing, tt.spec))
		})
	}
}
