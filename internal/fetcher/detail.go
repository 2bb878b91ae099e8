package fetcher

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var reStreamID = regexp.MustCompile(`acestream://.{40}`)

// StreamIDs returns every acestream address on a detail page, in page order.
func StreamIDs(page string) []string {
	return reStreamID.FindAllString(page, -1)
}

// BroadcastTime reads the kickoff from the detail page's startDate metadata
// as HH:MM in loc. The machine-readable content attribute wins over the
// human-readable "8 октября 2022, 14:00" text.
func BroadcastTime(page string, loc *time.Location) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	sel := doc.Find(`[itemprop="startDate"]`).First()
	if sel.Length() == 0 {
		return "", false
	}
	if content, ok := sel.Attr("content"); ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(content)); err == nil {
			return t.In(loc).Format("15:04"), true
		}
	}
	text := strings.TrimSpace(sel.Text())
	if i := strings.LastIndex(text, ", "); i >= 0 {
		if v := strings.TrimSpace(text[i+2:]); v != "" {
			return v, true
		}
	}
	return "", false
}
