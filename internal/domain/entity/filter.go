package entity

type SmartFilter struct {
	Label           string   `json:"label,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	ExcludeKeywords []string `json:"exclude_keywords,omitempty"`
}

func (s *SmartFilter) IsEmpty() bool {
	return s == nil || (len(s.Keywords) == 0 && len(s.ExcludeKeywords) == 0)
}

// FilterSpec is the conjunction of every set predicate. ListingIDs is the
// same-page allowlist and never survives persistence.
type FilterSpec struct {
	OwnerType         OwnerType    `json:"owner_type,omitempty"`
	MaxPrice          float64      `json:"max_price,omitempty"`
	MinSize           int          `json:"min_size,omitempty"`
	MinRooms          int          `json:"min_rooms,omitempty"`
	MinEnergyRating   EnergyRating `json:"min_energy_rating,omitempty"`
	RequireEnergyCert bool         `json:"require_energy_cert,omitempty"`
	ListingIDs        []string     `json:"listing_ids,omitempty"`
	SmartFilter       *SmartFilter `json:"smart_filter,omitempty"`
}

func (f FilterSpec) IsEmpty() bool {
	return f.OwnerType == "" &&
		f.MaxPrice == 0 &&
		f.MinSize == 0 &&
		f.MinRooms == 0 &&
		f.MinEnergyRating == "" &&
		!f.RequireEnergyCert &&
		len(f.ListingIDs) == 0 &&
		f.SmartFilter.IsEmpty()
}

// Persistable drops the same-page allowlist.
func (f FilterSpec) Persistable() FilterSpec {
	f.ListingIDs = nil
	if f.SmartFilter.IsEmpty() {
		f.SmartFilter = nil
	}
	return f
}

// WithScalars replaces the scalar predicates and keeps the smart filter.
func (f FilterSpec) WithScalars(other FilterSpec) FilterSpec {
	other.SmartFilter = f.SmartFilter
	return other
}

type FilterResult struct {
	Shown  int `json:"shown"`
	Hidden int `json:"hidden"`
}

// NativeFilters are the server-side search filters encoded in the results URL.
// They apply to every results page, unlike FilterSpec.
type NativeFilters struct {
	MinPrice        int  `json:"min_price,omitempty"`
	MaxPrice        int  `json:"max_price,omitempty"`
	MinSize         int  `json:"min_size,omitempty"`
	MaxSize         int  `json:"max_size,omitempty"`
	MinBedrooms     int  `json:"min_bedrooms,omitempty"`
	Elevator        bool `json:"elevator,omitempty"`
	Terrace         bool `json:"terrace,omitempty"`
	AirConditioning bool `json:"air_conditioning,omitempty"`
	Parking         bool `json:"parking,omitempty"`
	Furnished       bool `json:"furnished,omitempty"`
	PetsAllowed     bool `json:"pets_allowed,omitempty"`
}

func (n NativeFilters) IsEmpty() bool {
	return n == NativeFilters{}
}

// Fields lists the set filters by their JSON name.
func (n NativeFilters) Fields() map[string]any {
	out := make(map[string]any)
	for name, v := range map[string]int{
		"min_price":    n.MinPrice,
		"max_price":    n.MaxPrice,
		"min_size":     n.MinSize,
		"max_size":     n.MaxSize,
		"min_bedrooms": n.MinBedrooms,
	} {
		if v != 0 {
			out[name] = v
		}
	}
	for name, v := range map[string]bool{
		"elevator":         n.Elevator,
		"terrace":          n.Terrace,
		"air_conditioning": n.AirConditioning,
		"parking":          n.Parking,
		"furnished":        n.Furnished,
		"pets_allowed":     n.PetsAllowed,
	} {
		if v {
			out[name] = true
		}
	}
	return out
}
