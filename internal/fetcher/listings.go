package fetcher

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
	"time"

	"github.com/voyagen/pimplecast/internal/models"
	"github.com/voyagen/pimplecast/internal/schedule"
)

const (
	itemMarker     = `class="match-item _rates"`
	sectionMarker  = "streams-day"
	liveMarker     = `<div class="match-item__title-date liveTime">`
	finishedMarker = `<div>Завершен</div>`

	// dayRollover is how long after midnight the site keeps showing the
	// previous day's listings.
	dayRollover = 3 * time.Hour
)

var (
	reLink     = regexp.MustCompile(`(/football/\d+[^/]*/)`)
	reHomeTeam = regexp.MustCompile(`<span class="table-item__home-name">([^<]*)</span>`)
	reAwayTeam = regexp.MustCompile(`<span class="table-item__away-name">(.*)</span>`)
	reChannel  = regexp.MustCompile(`<div class="match-item__logo-channel">(.*)</div>`)
	reTime     = regexp.MustCompile(`<div>(\d{2}:\d{2})</div>`)
)

// field marks a Broadcast field whose matcher has hit. An empty capture still
// counts, so a blank cell is never overwritten by a later line.
type field uint8

const (
	fieldLink field = 1 << iota
	fieldHome
	fieldAway
	fieldChannel
	fieldTime
)

var matchers = []struct {
	f   field
	re  *regexp.Regexp
	dst func(*models.Broadcast) *string
}{
	{fieldLink, reLink, func(b *models.Broadcast) *string { return &b.Link }},
	{fieldHome, reHomeTeam, func(b *models.Broadcast) *string { return &b.HomeTeam }},
	{fieldAway, reAwayTeam, func(b *models.Broadcast) *string { return &b.AwayTeam }},
	{fieldChannel, reChannel, func(b *models.Broadcast) *string { return &b.Channel }},
	{fieldTime, reTime, func(b *models.Broadcast) *string { return &b.Time }},
}

// extractState is the in-progress record, the fields matched so far and
// whether the finished marker was seen for it. The zero value means no
// record is open.
type extractState struct {
	current  *models.Broadcast
	matched  field
	finished bool
}

// step feeds one line into s. It returns the next state and, when the line
// completed the open record, that record. A record completes once the
// channel matcher hits, even on an empty cell.
func step(s extractState, line string) (extractState, *Candidate) {
	if strings.Contains(line, itemMarker) {
		s = extractState{current: &models.Broadcast{}}
	}
	if s.current == nil {
		return s, nil
	}

	b := *s.current
	matched := s.matched
	for _, m := range matchers {
		if matched&m.f != 0 {
			continue
		}
		if v, ok := matchFirst(m.re, line); ok {
			*m.dst(&b) = v
			matched |= m.f
		}
	}
	b.Live = b.Live || strings.Contains(line, liveMarker)
	finished := s.finished || strings.Contains(line, finishedMarker)

	if matched&fieldChannel != 0 {
		return extractState{}, &Candidate{Broadcast: b, Finished: finished}
	}
	return extractState{current: &b, matched: matched, finished: finished}, nil
}

// Extract turns listing lines into completed records. It stops at the next
// day's section header. Records whose channel never appears are dropped.
func Extract(lines iter.Seq[string]) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		var s extractState
		for line := range lines {
			if strings.Contains(line, sectionMarker) {
				return
			}
			var c *Candidate
			s, c = step(s, line)
			if c != nil && !yield(*c) {
				return
			}
		}
	}
}

// TodaySection yields the lines following the section header for day.
func TodaySection(lines iter.Seq[string], day int) iter.Seq[string] {
	header := regexp.MustCompile(fmt.Sprintf(`<div class="streams-day">%d(?:\D|$)`, day))
	return func(yield func(string) bool) {
		found := false
		for line := range lines {
			if !found {
				found = header.MatchString(line)
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// ListingDay returns the day of month whose listings are current at now.
func ListingDay(now time.Time, loc *time.Location) int {
	return now.In(loc).Add(-dayRollover).Day()
}

// Select keeps candidates that are not finished and are suitable at now.
func Select(cands iter.Seq[Candidate], now time.Time, loc *time.Location) iter.Seq[models.Broadcast] {
	return func(yield func(models.Broadcast) bool) {
		for c := range cands {
			if c.Finished || !schedule.Suitable(c.Broadcast, now, loc) {
				continue
			}
			if !yield(c.Broadcast) {
				return
			}
		}
	}
}

// Listings returns the broadcasts on a listings page that belong in the
// playlist at now.
func Listings(page string, now time.Time, loc *time.Location) iter.Seq[models.Broadcast] {
	section := TodaySection(strings.Lines(page), ListingDay(now, loc))
	return Select(Extract(section), now, loc)
}

func matchFirst(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
