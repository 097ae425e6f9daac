package idealista

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/domain/entity"
)

const agencyCard = `<article class="item" data-element-id="101">
  <picture><source srcset="https://img4.idealista.com/blur/id.pro.es.image.master/ab/logo.jpg"></picture>
  <img src="https://img3.idealista.com/blur/WEB_LISTING/0/id.pro.es.image.master/01.jpg">
  <img src="https://img3.idealista.com/blur/WEB_LISTING/0/id.pro.es.image.master/02.jpg">
  <a class="item-link" href="/inmueble/101/" title="Piso en Malasaña">Piso en calle Pez, Malasaña</a>
  <span class="item-price">1.250<span>€/mes</span></span>
  <div class="item-detail-char">
    <span class="item-detail">2 hab.</span>
    <span class="item-detail">65 m²</span>
  </div>
  <script>track()</script>
</article>`

const privateCard = `<div class="item-container">
  <a class="item-link" href="https://www.idealista.com/inmueble/202/" title="Estudio en Lavapiés"></a>
  <span class="item-price">780 €/mes</span>
  <span class="item-detail">1 hab. 38 m²</span>
  <span class="energy-label energy-E"></span>
  <img src="https://img3.idealista.com/blur/WEB_LISTING/0/id.es.image/1.jpg">
</div>`

func TestParseListingCard_Agency(t *testing.T) {
	rec, err := ParseListingCard(agencyCard, DefaultBaseURL)
	require.NoError(t, err)

	assert.Equal(t, "101", rec.ID)
	assert.Equal(t, "Piso en calle Pez, Malasaña", rec.Title)
	assert.Equal(t, 1250.0, rec.Price)
	assert.Equal(t, 65, rec.SizeSqm)
	assert.Equal(t, 2, rec.Rooms)
	assert.Equal(t, entity.OwnerAgency, rec.OwnerType)
	assert.Equal(t, 2, rec.PhotoCount)
	assert.Equal(t, "https://www.idealista.com/inmueble/101/", rec.URL)
	assert.True(t, rec.Visible)
}

func TestParseListingCard_Private(t *testing.T) {
	rec, err := ParseListingCard(privateCard, DefaultBaseURL)
	require.NoError(t, err)

	assert.Equal(t, "202", rec.ID, "id falls back to the detail link")
	assert.Equal(t, "Estudio en Lavapiés", rec.Title, "title falls back to the title attribute")
	assert.Equal(t, 780.0, rec.Price)
	assert.Equal(t, 38, rec.SizeSqm)
	assert.Equal(t, 1, rec.Rooms)
	assert.Equal(t, entity.EnergyRating("E"), rec.EnergyRating)
	assert.Equal(t, entity.OwnerIndividual, rec.OwnerType)
}

func TestParseListingCard_NoLinkIsUnknownOwner(t *testing.T) {
	rec, err := ParseListingCard(`<article class="item"><span class="item-price">900 €</span></article>`, DefaultBaseURL)
	require.NoError(t, err)

	assert.Equal(t, entity.OwnerUnknown, rec.OwnerType)
	assert.Zero(t, rec.SizeSqm)
	assert.Empty(t, rec.ID)
}

func TestParseListingCards(t *testing.T) {
	page := `<html><body><main>` + agencyCard + `<article class="item" data-element-id="303"><a href="/inmueble/303/">x</a></article></main></body></html>`

	recs, err := ParseListingCards(page, DefaultBaseURL)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "101", recs[0].ID)
	assert.Equal(t, "303", recs[1].ID)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.250 €/mes", 1250},
		{"950,50 €", 950.5},
		{"2.100.000 €", 2100000},
		{"A consultar", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePrice(tt.in))
		})
	}
}

func TestParseDetailPage(t *testing.T) {
	page := `<html><body>
  <span class="info-data-price"><span>1.100</span> €/mes</span>
  <div class="info-features"><span>72 m² construidos</span></div>
  <div class="comment"><p>Piso   exterior muy
  luminoso, no se admiten mascotas.</p></div>
  <div class="details-property_features"><ul><li>Consumo: <span class="icon-energy-c-c"></span></li>
  <li>Emisiones: <span class="icon-energy-c-e"></span></li></ul></div>
  <div class="professional-name"><span class="name">Particular</span></div>
  <input name="user-name" value="Lucía">
  <img src="https://img3.idealista.com/pictures/1.jpg">
  <img src="https://img3.idealista.com/pictures/2.jpg">
  <img src="https://static.example.com/logo.png">
</body></html>`

	d, err := ParseDetailPage(page, "101")
	require.NoError(t, err)

	assert.Equal(t, "101", d.ID)
	assert.Equal(t, entity.EnergyRating("C"), d.EnergyConsumption)
	assert.Equal(t, entity.EnergyRating("E"), d.EnergyEmissions)
	assert.Equal(t, entity.EnergyRating("E"), d.EffectiveRating())
	assert.Equal(t, entity.OwnerIndividual, d.AdvertiserType)
	assert.Equal(t, "Lucía", d.AdvertiserName)
	assert.Equal(t, "Piso exterior muy luminoso, no se admiten mascotas.", d.Description)
	assert.Equal(t, 2, d.PhotoCount)
	assert.Equal(t, 1100.0, d.Price)
	assert.Equal(t, 72, d.SizeSqm)
}

func TestParseDetailPage_EnergyStatus(t *testing.T) {
	tests := []struct {
		text string
		want entity.EnergyRating
	}{
		{"Certificado energético: en trámite", entity.EnergyPending},
		{"Certificado energético: No indicado", entity.EnergyNotIndicated},
		{"Certificado energético: Inmueble exento", entity.EnergyExempt},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			page := `<html><body><div class="details-property_features">` + tt.text +
				`</div><div class="professional-name"><span class="name">Inmobiliaria Sol</span></div></body></html>`

			d, err := ParseDetailPage(page, "9")
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.EffectiveRating())
			assert.Equal(t, entity.OwnerAgency, d.AdvertiserType)
		})
	}
}

func TestParsePagination(t *testing.T) {
	page := `<html><body><div class="pagination"><ul>
  <li class="prev"><a href="/alquiler-viviendas/madrid/">Anterior</a></li>
  <li><a href="/alquiler-viviendas/madrid/">1</a></li>
  <li class="selected"><span>2</span></li>
  <li><a href="/alquiler-viviendas/madrid/pagina-3.htm">3</a></li>
  <li><a href="/alquiler-viviendas/madrid/pagina-7.htm">7</a></li>
  <li class="next"><a href="/alquiler-viviendas/madrid/pagina-3.htm">Siguiente</a></li>
</ul></div></body></html>`

	state, err := ParsePagination(page, DefaultBaseURL)
	require.NoError(t, err)

	assert.Equal(t, 2, state.Current)
	assert.Equal(t, 7, state.Total)
	assert.True(t, state.HasPrev)
	assert.True(t, state.HasNext)

	link, ok := state.LinkFor(3)
	assert.True(t, ok)
	assert.Equal(t, "https://www.idealista.com/alquiler-viviendas/madrid/pagina-3.htm", link)
	_, ok = state.LinkFor(2)
	assert.False(t, ok)
}

func TestParsePagination_SinglePage(t *testing.T) {
	state, err := ParsePagination(`<html><body><p>sin resultados</p></body></html>`, DefaultBaseURL)
	require.NoError(t, err)
	assert.Equal(t, entity.PaginationState{Current: 1, Total: 1}, state)
}

func TestCleanHTML_KeepsDataAttributes(t *testing.T) {
	body, err := CleanHTML(`<div data-element-id="5" style="color:red" onclick="x()"><script>1</script><!-- c --><p>ok</p></div>`, nil)
	require.NoError(t, err)

	div := body.FirstChild
	require.NotNil(t, div)
	require.Len(t, div.Attr, 1)
	assert.Equal(t, "data-element-id", div.Attr[0].Key)
	assert.Equal(t, "p", div.FirstChild.Data)
	assert.Nil(t, div.FirstChild.NextSibling)
}
