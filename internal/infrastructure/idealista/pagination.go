package idealista

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"listing-assistant/internal/domain/entity"
)

// ParsePagination reads the results pager. Pages without a pager are a
// single page.
func ParsePagination(pageHTML, baseURL string) (entity.PaginationState, error) {
	doc, err := document(pageHTML)
	if err != nil {
		return entity.PaginationState{}, err
	}

	state := entity.PaginationState{Current: 1, Total: 1}
	pager := doc.Find(".pagination").First()
	if pager.Length() == 0 {
		return state, nil
	}

	pager.Find("li").Each(func(_ int, li *goquery.Selection) {
		class := li.AttrOr("class", "")
		switch {
		case strings.Contains(class, "prev"):
			state.HasPrev = li.Find("a").Length() > 0
			return
		case strings.Contains(class, "next"):
			state.HasNext = li.Find("a").Length() > 0
			return
		}

		n, err := strconv.Atoi(clean(li.Text()))
		if err != nil {
			return
		}
		if n > state.Total {
			state.Total = n
		}
		if strings.Contains(class, "selected") || li.Find(".selected").Length() > 0 {
			state.Current = n
			return
		}
		if href, ok := li.Find("a").Attr("href"); ok {
			state.Links = append(state.Links, entity.PageLink{Page: n, URL: absoluteURL(baseURL, href)})
		}
	})

	if state.Current > state.Total {
		state.Total = state.Current
	}
	return state, nil
}
