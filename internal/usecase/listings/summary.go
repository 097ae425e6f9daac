package listings

import (
	"math"
	"slices"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/filter"
)

const (
	FlagFewPhotos         = "few_photos"
	FlagSuspiciouslyLow   = "suspiciously_low_price"
	FlagMissingEnergyCert = "missing_energy_certificate"
	FlagMissingSize       = "missing_size"
	minPhotos             = 5
	lowPriceRatio         = 0.6
	minSamplesForMedian   = 3
)

func Summarize(listings []entity.ListingRecord) entity.PageSummary {
	summary := entity.PageSummary{
		Total: len(listings),
		ByOwnerType: map[string]int{
			string(entity.OwnerIndividual): 0,
			string(entity.OwnerAgency):     0,
			string(entity.OwnerUnknown):    0,
		},
		ByEnergyRating: map[string]int{},
	}

	var prices, sizes []float64
	for _, l := range listings {
		if l.Visible {
			summary.Visible++
		}
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
		if l.SizeSqm > 0 {
			sizes = append(sizes, float64(l.SizeSqm))
		}
		owner := l.OwnerType
		if owner == "" {
			owner = entity.OwnerUnknown
		}
		summary.ByOwnerType[string(owner)]++
		if l.EnergyRating != "" {
			summary.ByEnergyRating[string(l.EnergyRating)]++
		}
		if len(l.RedFlags) > 0 {
			summary.WithRedFlags++
		}
	}
	summary.Hidden = summary.Total - summary.Visible
	summary.PriceRange = rangeOf(prices)
	summary.SizeRange = rangeOf(sizes)

	return summary
}

func rangeOf(values []float64) *entity.Range {
	if len(values) == 0 {
		return nil
	}
	r := &entity.Range{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
		sum += v
	}
	r.Avg = math.Round(sum / float64(len(values)))
	return r
}

func annotateRedFlags(items []filter.Item) {
	var perSqm []float64
	for _, it := range items {
		if it.Record.PricePerSqm > 0 {
			perSqm = append(perSqm, it.Record.PricePerSqm)
		}
	}
	median := 0.0
	if len(perSqm) >= minSamplesForMedian {
		median = medianOf(perSqm)
	}

	for i := range items {
		items[i].Record.RedFlags = redFlags(items[i].Record, median)
	}
}

func redFlags(l entity.ListingRecord, medianPerSqm float64) []string {
	var flags []string
	if l.PhotoCount < minPhotos {
		flags = append(flags, FlagFewPhotos)
	}
	if medianPerSqm > 0 && l.PricePerSqm > 0 && l.PricePerSqm < lowPriceRatio*medianPerSqm {
		flags = append(flags, FlagSuspiciouslyLow)
	}
	if l.EnergyRating == entity.EnergyNotIndicated {
		flags = append(flags, FlagMissingEnergyCert)
	}
	if l.SizeSqm == 0 {
		flags = append(flags, FlagMissingSize)
	}
	return flags
}

func medianOf(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
