package idealista

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/domain/entity"
)

func TestURLBuilder_DetailURL(t *testing.T) {
	b := NewURLBuilder("")
	assert.Equal(t, "https://www.idealista.com/inmueble/123/", b.DetailURL("123"))
}

func TestURLBuilder_PageURL(t *testing.T) {
	b := NewURLBuilder("")

	tests := []struct {
		name    string
		current string
		page    int
		want    string
	}{
		{
			name:    "first to second",
			current: "https://www.idealista.com/alquiler-viviendas/madrid/centro/",
			page:    2,
			want:    "https://www.idealista.com/alquiler-viviendas/madrid/centro/pagina-2.htm",
		},
		{
			name:    "replaces page segment",
			current: "https://www.idealista.com/alquiler-viviendas/madrid/centro/pagina-2.htm",
			page:    5,
			want:    "https://www.idealista.com/alquiler-viviendas/madrid/centro/pagina-5.htm",
		},
		{
			name:    "back to first keeps query",
			current: "https://www.idealista.com/alquiler-viviendas/madrid/centro/pagina-3.htm?ordenado-por=precios-asc",
			page:    1,
			want:    "https://www.idealista.com/alquiler-viviendas/madrid/centro/?ordenado-por=precios-asc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.PageURL(tt.current, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := b.PageURL("https://www.idealista.com/x/", 0)
	assert.Error(t, err)
	_, err = b.PageURL("/relative/", 2)
	assert.Error(t, err)
}

func TestURLBuilder_FilteredSearchURL(t *testing.T) {
	b := NewURLBuilder("")

	got, err := b.FilteredSearchURL(
		"https://www.idealista.com/alquiler-viviendas/madrid/centro/con-terraza/pagina-4.htm",
		entity.NativeFilters{MaxPrice: 1200, MinSize: 60, MinBedrooms: 3, Elevator: true, PetsAllowed: true},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"https://www.idealista.com/alquiler-viviendas/madrid/centro/con-precio-hasta_1200,metros-cuadrados-mas-de_60,de-tres-dormitorios,de-cuatro-cinco-habitaciones-o-mas,ascensor,mascotas/",
		got,
	)

	cleared, err := b.FilteredSearchURL(got, entity.NativeFilters{})
	require.NoError(t, err)
	assert.Equal(t, "https://www.idealista.com/alquiler-viviendas/madrid/centro/", cleared)
}

func TestFilterTokens_BedroomsCapped(t *testing.T) {
	tokens := filterTokens(entity.NativeFilters{MinBedrooms: 9})
	assert.Equal(t, []string{"de-cuatro-cinco-habitaciones-o-mas"}, tokens)

	tokens = filterTokens(entity.NativeFilters{MinPrice: 500, MaxSize: 90, Furnished: true})
	assert.Equal(t, []string{"precio-desde_500", "metros-cuadrados-menos-de_90", "amueblados"}, tokens)
}
