package idealista

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"listing-assistant/internal/domain/entity"
)

// CardSelectors are tried in order; the first one that matches anything wins.
var CardSelectors = []string{"article.item", ".item-container", "[data-element-id]"}

// ParseListingCard extracts a listing record from the outer HTML of one
// search result card. Relative links are resolved against baseURL.
func ParseListingCard(outerHTML, baseURL string) (entity.ListingRecord, error) {
	doc, err := document(outerHTML)
	if err != nil {
		return entity.ListingRecord{}, err
	}

	card := doc.Children().First()
	if card.Length() == 0 {
		return entity.ListingRecord{}, fmt.Errorf("empty listing card")
	}
	return parseCard(card, baseURL), nil
}

// ParseListingCards extracts every card of a full results page.
func ParseListingCards(pageHTML, baseURL string) ([]entity.ListingRecord, error) {
	doc, err := document(pageHTML)
	if err != nil {
		return nil, err
	}

	var cards *goquery.Selection
	for _, sel := range CardSelectors {
		if cards = doc.Find(sel); cards.Length() > 0 {
			break
		}
	}

	out := make([]entity.ListingRecord, 0, cards.Length())
	cards.Each(func(_ int, s *goquery.Selection) {
		out = append(out, parseCard(s, baseURL))
	})
	return out, nil
}

func parseCard(card *goquery.Selection, baseURL string) entity.ListingRecord {
	link := card.Find(`a[href*="/inmueble/"]`).First()
	href, _ := link.Attr("href")

	id := card.AttrOr("data-element-id", "")
	if id == "" {
		id = listingIDFromURL(href)
	}

	titleEl := card.Find(".item-link").First()
	title := clean(titleEl.Text())
	if title == "" {
		title = clean(titleEl.AttrOr("title", ""))
	}

	detailText := card.Find(".item-detail").Text()
	if detailText == "" {
		detailText = card.Find(".item-detail-char").Text()
	}

	return entity.ListingRecord{
		ID:           id,
		Title:        title,
		Price:        parsePrice(card.Find(".item-price").First().Text()),
		SizeSqm:      parseSize(detailText),
		Rooms:        parseRooms(detailText),
		EnergyRating: cardEnergyRating(card),
		OwnerType:    detectOwnerType(card, href),
		PhotoCount:   card.Find("img").Length(),
		URL:          absoluteURL(baseURL, href),
		Visible:      true,
	}
}

func cardEnergyRating(card *goquery.Selection) entity.EnergyRating {
	el := card.Find(`[class*="energy"]`).First()
	if el.Length() == 0 {
		return ""
	}
	if m := letterPattern.FindStringSubmatch(el.Text()); m != nil {
		return entity.ParseEnergyRating(m[1])
	}
	if m := cardEnergyClassPattern.FindStringSubmatch(el.AttrOr("class", "")); m != nil {
		return entity.ParseEnergyRating(m[1])
	}
	return ""
}

// detectOwnerType treats professional links, pro image hosts and agency
// logos as agency markers; a plain detail link means a private owner.
func detectOwnerType(card *goquery.Selection, href string) entity.OwnerType {
	if strings.Contains(href, "/pro/") {
		return entity.OwnerAgency
	}

	proImage := false
	card.Find(`img[src*="idealista.com"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		proImage = strings.Contains(s.AttrOr("src", ""), "id.pro.")
		return !proImage
	})
	if !proImage {
		card.Find(`source[srcset*="idealista.com"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			proImage = strings.Contains(s.AttrOr("srcset", ""), "id.pro.")
			return !proImage
		})
	}
	hasLogo := card.Find(`.logo-branding, [class*="logo"], .item-logo`).Length() > 0

	switch {
	case proImage || hasLogo:
		return entity.OwnerAgency
	case strings.Contains(href, "/inmueble/"):
		return entity.OwnerIndividual
	}
	return entity.OwnerUnknown
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
