package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnergyRating(t *testing.T) {
	tests := []struct {
		in   string
		want EnergyRating
	}{
		{"a", "A"},
		{" G ", "G"},
		{"pending", EnergyPending},
		{"EXEMPT", EnergyExempt},
		{"not_indicated", EnergyNotIndicated},
		{"H", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEnergyRating(tt.in))
		})
	}
}

func TestEnergyRating_WorseThan(t *testing.T) {
	assert.True(t, EnergyRating("E").WorseThan("C"))
	assert.False(t, EnergyRating("C").WorseThan("C"))
	assert.False(t, EnergyRating("A").WorseThan("G"))
	assert.False(t, EnergyPending.WorseThan("A"))
	assert.False(t, EnergyRating("G").WorseThan(EnergyExempt))
}

func TestDetailRecord_EffectiveRating(t *testing.T) {
	d := DetailRecord{EnergyConsumption: "C", EnergyEmissions: "E"}
	assert.Equal(t, EnergyRating("E"), d.EffectiveRating())

	d = DetailRecord{EnergyConsumption: "B"}
	assert.Equal(t, EnergyRating("B"), d.EffectiveRating())

	d = DetailRecord{EnergyStatus: EnergyPending}
	assert.Equal(t, EnergyPending, d.EffectiveRating())
}

func TestListingRecord_Merge(t *testing.T) {
	card := ListingRecord{ID: "1", Price: 900, OwnerType: OwnerUnknown, PhotoCount: 3}
	detail := &DetailRecord{
		ID:             "1",
		EnergyStatus:   EnergyExempt,
		Description:    "Piso luminoso",
		AdvertiserType: OwnerIndividual,
		Price:          950,
		SizeSqm:        70,
		PhotoCount:     12,
	}

	merged := card.Merge(detail)

	assert.Equal(t, EnergyExempt, merged.EnergyRating)
	assert.Equal(t, "Piso luminoso", merged.Description)
	assert.Equal(t, OwnerIndividual, merged.OwnerType)
	assert.Equal(t, 900.0, merged.Price, "card price wins")
	assert.Equal(t, 70, merged.SizeSqm)
	assert.Equal(t, 12, merged.PhotoCount)
	assert.Equal(t, card, card.Merge(nil))
}

func TestMessage_TextAndToolCalls(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Blocks: []ContentBlock{
			{Type: ContentTypeText, Text: "Voy a filtrar"},
			{Type: ContentTypeToolUse, ToolUse: &ToolCall{ID: "t1", Name: "filter_listings"}},
			{Type: ContentTypeText, Text: "un momento"},
		},
	}

	assert.Equal(t, "Voy a filtrar\nun momento", msg.Text())
	calls := msg.ToolCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "t1", calls[0].ID)
}

func TestFilterSpec_Persistable(t *testing.T) {
	spec := FilterSpec{
		MaxPrice:    1000,
		ListingIDs:  []string{"1"},
		SmartFilter: &SmartFilter{},
	}

	p := spec.Persistable()

	assert.Nil(t, p.ListingIDs)
	assert.Nil(t, p.SmartFilter)
	assert.Equal(t, 1000.0, p.MaxPrice)
	assert.False(t, p.IsEmpty())
	assert.True(t, FilterSpec{}.IsEmpty())
}
