package entity

import (
	"strings"
	"time"
)

type OwnerType string

const (
	OwnerIndividual OwnerType = "individual"
	OwnerAgency     OwnerType = "agency"
	OwnerUnknown    OwnerType = "unknown"
)

// EnergyRating holds either a certificate letter A..G or a non-letter status.
type EnergyRating string

const (
	EnergyPending      EnergyRating = "pending"
	EnergyExempt       EnergyRating = "exempt"
	EnergyNotIndicated EnergyRating = "not_indicated"
)

var energyRanks = map[EnergyRating]int{
	"A": 1, "B": 2, "C": 3, "D": 4, "E": 5, "F": 6, "G": 7,
}

// ParseEnergyRating normalizes a letter (any case) or a known status.
func ParseEnergyRating(s string) EnergyRating {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	upper := EnergyRating(strings.ToUpper(s))
	if _, ok := energyRanks[upper]; ok {
		return upper
	}
	switch EnergyRating(strings.ToLower(s)) {
	case EnergyPending:
		return EnergyPending
	case EnergyExempt:
		return EnergyExempt
	case EnergyNotIndicated:
		return EnergyNotIndicated
	}
	return ""
}

// Rank returns 1 for A through 7 for G, and 0 for anything that is not a letter.
func (r EnergyRating) Rank() int {
	return energyRanks[r]
}

func (r EnergyRating) IsCertified() bool {
	return r.Rank() > 0
}

// WorseThan reports whether r is strictly worse than other. Both must be letters.
func (r EnergyRating) WorseThan(other EnergyRating) bool {
	if !r.IsCertified() || !other.IsCertified() {
		return false
	}
	return r.Rank() > other.Rank()
}

// WorseOf returns the worse of two letters, falling back to whichever is set.
func WorseOf(a, b EnergyRating) EnergyRating {
	switch {
	case a.IsCertified() && b.IsCertified():
		if a.Rank() >= b.Rank() {
			return a
		}
		return b
	case a.IsCertified():
		return a
	case b.IsCertified():
		return b
	}
	return ""
}

type ListingRecord struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Price          float64      `json:"price,omitempty"`
	SizeSqm        int          `json:"size,omitempty"`
	Rooms          int          `json:"rooms,omitempty"`
	PricePerSqm    float64      `json:"pricePerSqm,omitempty"`
	EnergyRating   EnergyRating `json:"energyRating,omitempty"`
	OwnerType      OwnerType    `json:"ownerType"`
	PhotoCount     int          `json:"photos"`
	URL            string       `json:"url"`
	Description    string       `json:"description,omitempty"`
	AdvertiserType OwnerType    `json:"advertiserType,omitempty"`
	Visible        bool         `json:"visible"`
	RedFlags       []string     `json:"redFlags,omitempty"`
	PriceChange    *PriceChange `json:"priceChange,omitempty"`
}

// Merge enriches the record with a cached detail fetch. Card data wins where
// the detail page has nothing to add.
func (l ListingRecord) Merge(d *DetailRecord) ListingRecord {
	if d == nil {
		return l
	}
	if rating := d.EffectiveRating(); rating != "" {
		l.EnergyRating = rating
	}
	if d.Description != "" {
		l.Description = d.Description
	}
	if d.AdvertiserType != "" {
		l.AdvertiserType = d.AdvertiserType
		l.OwnerType = d.AdvertiserType
	}
	if l.Price == 0 && d.Price > 0 {
		l.Price = d.Price
	}
	if l.SizeSqm == 0 && d.SizeSqm > 0 {
		l.SizeSqm = d.SizeSqm
	}
	if d.PhotoCount > l.PhotoCount {
		l.PhotoCount = d.PhotoCount
	}
	return l
}

type DetailRecord struct {
	ID                string       `json:"id"`
	EnergyRating      EnergyRating `json:"energyRating,omitempty"`
	EnergyConsumption EnergyRating `json:"energyConsumption,omitempty"`
	EnergyEmissions   EnergyRating `json:"energyEmissions,omitempty"`
	EnergyStatus      EnergyRating `json:"energyStatus,omitempty"`
	AdvertiserName    string       `json:"advertiserName,omitempty"`
	AdvertiserType    OwnerType    `json:"advertiserType,omitempty"`
	Description       string       `json:"description,omitempty"`
	PhotoCount        int          `json:"photos"`
	Price             float64      `json:"price,omitempty"`
	SizeSqm           int          `json:"size,omitempty"`
	FetchedAt         time.Time    `json:"fetchedAt"`
}

// EffectiveRating prefers the worse certificate letter and falls back to the status.
func (d DetailRecord) EffectiveRating() EnergyRating {
	if d.EnergyRating != "" {
		return d.EnergyRating
	}
	if worse := WorseOf(d.EnergyConsumption, d.EnergyEmissions); worse != "" {
		return worse
	}
	return d.EnergyStatus
}

type PriceChange struct {
	FirstSeen   float64   `json:"firstSeen"`
	Previous    float64   `json:"previous"`
	Current     float64   `json:"current"`
	Delta       float64   `json:"delta"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
}

type PriceHistory struct {
	FirstPrice  float64   `json:"firstPrice"`
	LastPrice   float64   `json:"lastPrice"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

type PageLink struct {
	Page int    `json:"page"`
	URL  string `json:"url"`
}

type PaginationState struct {
	Current int        `json:"current"`
	Total   int        `json:"total"`
	HasPrev bool       `json:"hasPrev"`
	HasNext bool       `json:"hasNext"`
	Links   []PageLink `json:"links,omitempty"`
}

func (p PaginationState) LinkFor(page int) (string, bool) {
	for _, l := range p.Links {
		if l.Page == page {
			return l.URL, true
		}
	}
	return "", false
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

type PageSummary struct {
	Total          int            `json:"total"`
	Visible        int            `json:"visible"`
	Hidden         int            `json:"hidden"`
	PriceRange     *Range         `json:"priceRange"`
	SizeRange      *Range         `json:"sizeRange"`
	ByOwnerType    map[string]int `json:"byOwnerType"`
	ByEnergyRating map[string]int `json:"byEnergyRating"`
	WithRedFlags   int            `json:"withRedFlags"`
}
