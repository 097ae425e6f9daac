package idealista

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	numberPattern = regexp.MustCompile(`[\d.,]+`)
	sizePattern   = regexp.MustCompile(`(\d+)\s*m`)
	roomsPattern  = regexp.MustCompile(`(?i)(\d+)\s*hab`)
	idPattern     = regexp.MustCompile(`inmueble/(\d+)`)
	letterPattern = regexp.MustCompile(`(?i)\b([A-G])\b`)

	cardEnergyClassPattern = regexp.MustCompile(`(?i)energy-(?:c-)?([a-g])\b`)
)

// document builds a goquery document from cleaned markup.
func document(raw string) (*goquery.Document, error) {
	body, err := CleanHTML(raw, nil)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(body), nil
}

// parsePrice reads Spanish-formatted amounts such as "1.250 €/mes" or "950,50".
func parsePrice(text string) float64 {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0
	}
	m = strings.ReplaceAll(m, ".", "")
	m = strings.Replace(m, ",", ".", 1)
	v, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseSize(text string) int {
	return firstInt(sizePattern, text)
}

func parseRooms(text string) int {
	return firstInt(roomsPattern, text)
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[1])
	return v
}

func listingIDFromURL(href string) string {
	if m := idPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
