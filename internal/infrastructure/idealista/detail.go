package idealista

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"listing-assistant/internal/domain/entity"
)

var (
	energyClassPattern = regexp.MustCompile(`(?i)icon-energy-c-([a-g])`)
	detailSizePattern  = regexp.MustCompile(`(\d+)\s*m²`)
)

// ParseDetailPage extracts the detail record of a listing page.
func ParseDetailPage(pageHTML, id string) (*entity.DetailRecord, error) {
	doc, err := document(pageHTML)
	if err != nil {
		return nil, err
	}

	d := &entity.DetailRecord{ID: id}

	doc.Find(`[class*="icon-energy-c-"]`).Each(func(_ int, s *goquery.Selection) {
		m := energyClassPattern.FindStringSubmatch(s.AttrOr("class", ""))
		if m == nil {
			return
		}
		rating := entity.ParseEnergyRating(m[1])
		switch {
		case d.EnergyConsumption == "":
			d.EnergyConsumption = rating
		case d.EnergyEmissions == "":
			d.EnergyEmissions = rating
		}
	})

	features := strings.ToLower(doc.Find(".details-property_features").Text())
	switch {
	case strings.Contains(features, "en trámite"):
		d.EnergyStatus = entity.EnergyPending
	case strings.Contains(features, "no indicado"):
		d.EnergyStatus = entity.EnergyNotIndicated
	case strings.Contains(features, "exento"):
		d.EnergyStatus = entity.EnergyExempt
	}
	d.EnergyRating = entity.WorseOf(d.EnergyConsumption, d.EnergyEmissions)

	d.AdvertiserName = clean(doc.Find(".advertiser-name").First().Text())
	if d.AdvertiserName == "" {
		d.AdvertiserName = clean(doc.Find(`input[name="user-name"]`).First().AttrOr("value", ""))
	}
	if d.AdvertiserName == "" {
		d.AdvertiserName = clean(doc.Find(".about-advertiser-name").First().Text())
	}

	if pro := doc.Find(".professional-name .name").First(); pro.Length() > 0 {
		if strings.Contains(strings.ToLower(pro.Text()), "particular") {
			d.AdvertiserType = entity.OwnerIndividual
		} else {
			d.AdvertiserType = entity.OwnerAgency
		}
	}

	d.Description = clean(doc.Find(".comment p, .adCommentsLanguage").First().Text())
	d.PhotoCount = doc.Find(`img[src*="idealista.com/pictures"]`).Length()
	d.Price = parsePrice(doc.Find(".info-data-price, .price-value").First().Text())
	d.SizeSqm = firstInt(detailSizePattern, doc.Text())

	return d, nil
}
