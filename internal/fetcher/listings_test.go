package fetcher

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/pimplecast/internal/models"
)

const listingsPage = `<html><body>
<div class="streams-day">11 мая, суббота</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/101-akhmat-orenburg/">
<span class="table-item__home-name">Ахмат</span>
<span class="table-item__away-name">Оренбург</span>
<div>18:00</div>
<div class="match-item__logo-channel">МАТЧ! HD</div>
</div>
<div class="streams-day">12 мая, воскресенье</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/201-zenit-spartak/">
<div class="match-item__title-date liveTime">
<span class="table-item__home-name">Зенит</span>
<span class="table-item__away-name">Спартак</span>
<div class="match-item__logo-channel">МАТЧ ПРЕМЬЕР HD</div>
</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/202-cska-dynamo/">
<span class="table-item__home-name">ЦСКА</span>
<span class="table-item__away-name">Динамо</span>
<div>18:30</div>
<div class="match-item__logo-channel">МАТЧ! Футбол 1 (HD)</div>
</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/203-krasnodar-rubin/">
<span class="table-item__home-name">Краснодар</span>
<span class="table-item__away-name">Рубин</span>
<div>Завершен</div>
<div>16:00</div>
<div class="match-item__logo-channel">МАТЧ! HD</div>
</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/204-lokomotiv-krylia/">
<span class="table-item__home-name">Локомотив</span>
<span class="table-item__away-name">Крылья Советов</span>
<div>19:00</div>
</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/205-ural-fakel/">
<span class="table-item__home-name">Урал</span>
<span class="table-item__away-name">Факел</span>
<div>18:15</div>
<div class="match-item__logo-channel">Some Sport HD</div>
</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/206-rostov-sochi/">
<span class="table-item__home-name">Ростов</span>
<span class="table-item__away-name">Сочи</span>
<div>21:00</div>
<div class="match-item__logo-channel">МАТЧ! СТРАНА HD</div>
</div>
<div class="streams-day">13 мая, понедельник</div>
<div class="match-item _rates">
<a class="match-item__link" href="/football/301-rodina-baltika/">
<span class="table-item__home-name">Родина</span>
<span class="table-item__away-name">Балтика</span>
<div>18:00</div>
<div class="match-item__logo-channel">МАТЧ! HD</div>
</div>
</body></html>
`

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

func candidateLinks(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Link)
	}
	return out
}

func TestExtractTodaySection(t *testing.T) {
	cands := slices.Collect(Extract(TodaySection(strings.Lines(listingsPage), 12)))

	require.Equal(t, []string{
		"/football/201-zenit-spartak/",
		"/football/202-cska-dynamo/",
		"/football/203-krasnodar-rubin/",
		"/football/205-ural-fakel/",
		"/football/206-rostov-sochi/",
	}, candidateLinks(cands))

	live := cands[0]
	assert.True(t, live.Live)
	assert.False(t, live.Finished)
	assert.Equal(t, "", live.Time)
	assert.Equal(t, "Зенит – Спартак", live.Teams())
	assert.Equal(t, "МАТЧ ПРЕМЬЕР HD", live.Channel)

	assert.Equal(t, models.Broadcast{
		Link:     "/football/202-cska-dynamo/",
		HomeTeam: "ЦСКА",
		AwayTeam: "Динамо",
		Channel:  "МАТЧ! Футбол 1 (HD)",
		Time:     "18:30",
	}, cands[1].Broadcast)

	assert.True(t, cands[2].Finished)
	assert.False(t, cands[3].Finished)
}

func TestExtractIsIdempotent(t *testing.T) {
	first := slices.Collect(Extract(TodaySection(strings.Lines(listingsPage), 12)))
	second := slices.Collect(Extract(TodaySection(strings.Lines(listingsPage), 12)))
	assert.Equal(t, first, second)
}

func TestExtractDropsRecordWithoutChannel(t *testing.T) {
	lines := []string{
		`<div class="match-item _rates">`,
		`<a href="/football/1-a-b/">`,
		`<span class="table-item__home-name">A</span>`,
		`<div>19:00</div>`,
		`<div class="match-item _rates">`,
		`<a href="/football/2-c-d/">`,
		`<div class="match-item__logo-channel">МАТЧ! HD</div>`,
		`<div class="match-item _rates">`,
		`<a href="/football/3-e-f/">`,
		`<div class="streams-day">13 мая</div>`,
		`<div class="match-item__logo-channel">МАТЧ! HD</div>`,
	}
	cands := slices.Collect(Extract(slices.Values(lines)))

	require.Len(t, cands, 1)
	assert.Equal(t, "/football/2-c-d/", cands[0].Link)
	assert.Empty(t, cands[0].HomeTeam)
	assert.Empty(t, cands[0].Time)
}

func TestExtractEmptyChannelCellCompletes(t *testing.T) {
	lines := []string{
		`<div class="match-item _rates">`,
		`<a href="/football/1-a-b/">`,
		`<div>19:00</div>`,
		`<div class="match-item__logo-channel"></div>`,
		`<div class="match-item _rates">`,
		`<a href="/football/2-c-d/">`,
		`<div class="match-item__logo-channel">МАТЧ! HD</div>`,
	}
	cands := slices.Collect(Extract(slices.Values(lines)))

	require.Equal(t, []string{"/football/1-a-b/", "/football/2-c-d/"}, candidateLinks(cands))
	assert.Empty(t, cands[0].Channel)
	assert.Equal(t, "19:00", cands[0].Time)
	assert.Equal(t, "МАТЧ! HD", cands[1].Channel)
}

func TestExtractBlankCellIsFirstMatch(t *testing.T) {
	lines := []string{
		`<div class="match-item _rates">`,
		`<a href="/football/1-a-b/">`,
		`<span class="table-item__home-name"></span>`,
		`<span class="table-item__home-name">Late</span>`,
		`<span class="table-item__away-name"> </span>`,
		`<span class="table-item__away-name">Later</span>`,
		`<div class="match-item__logo-channel">МАТЧ! HD</div>`,
	}
	cands := slices.Collect(Extract(slices.Values(lines)))

	require.Len(t, cands, 1)
	assert.Empty(t, cands[0].HomeTeam)
	assert.Equal(t, " ", cands[0].AwayTeam)
}

func TestExtractFirstMatchWinsAndLiveSticks(t *testing.T) {
	lines := []string{
		`<div class="match-item _rates">`,
		`<div class="match-item__title-date liveTime">`,
		`<a href="/football/1-a-b/">`,
		`<a href="/football/9-other/">`,
		`<div>19:00</div>`,
		`<div>20:00</div>`,
		`<span class="table-item__home-name">A</span>`,
		`<span class="table-item__home-name">Z</span>`,
		`<span class="table-item__away-name">B</span>`,
		`<div class="match-item__logo-channel">МАТЧ! HD</div>`,
		`<div class="match-item__logo-channel">Футбол HD</div>`,
	}
	cands := slices.Collect(Extract(slices.Values(lines)))

	require.Len(t, cands, 1)
	assert.Equal(t, models.Broadcast{
		Link:     "/football/1-a-b/",
		HomeTeam: "A",
		AwayTeam: "B",
		Channel:  "МАТЧ! HD",
		Time:     "19:00",
		Live:     true,
	}, cands[0].Broadcast)
}

func TestExtractIgnoresLinesBeforeFirstItem(t *testing.T) {
	lines := []string{
		`<a href="/football/1-nav/">`,
		`<div class="match-item__logo-channel">МАТЧ! HD</div>`,
	}
	assert.Empty(t, slices.Collect(Extract(slices.Values(lines))))
}

func TestExtractStopsEarly(t *testing.T) {
	var n int
	for range Extract(TodaySection(strings.Lines(listingsPage), 12)) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestTodaySectionMatchesWholeDay(t *testing.T) {
	lines := []string{
		`<div class="streams-day">12 мая</div>`,
		`twelve`,
		`<div class="streams-day">1 июня</div>`,
		`one`,
	}
	got := slices.Collect(TodaySection(slices.Values(lines), 1))
	assert.Equal(t, []string{"one"}, got)

	assert.Empty(t, slices.Collect(TodaySection(slices.Values(lines), 2)))
}

func TestListingDayRollsOverAtThree(t *testing.T) {
	loc := moscow(t)
	assert.Equal(t, 12, ListingDay(time.Date(2024, 5, 13, 2, 59, 0, 0, loc), loc))
	assert.Equal(t, 13, ListingDay(time.Date(2024, 5, 13, 3, 0, 0, 0, loc), loc))
	// 23:30 UTC on the 12th is 02:30 on the 13th in Moscow.
	assert.Equal(t, 12, ListingDay(time.Date(2024, 5, 12, 23, 30, 0, 0, time.UTC), loc))
}

func TestListingsSelectsSuitable(t *testing.T) {
	loc := moscow(t)
	now := time.Date(2024, 5, 12, 18, 0, 0, 0, loc)

	got := slices.Collect(Listings(listingsPage, now, loc))

	var gotLinks []string
	for _, b := range got {
		gotLinks = append(gotLinks, b.Link)
	}
	assert.Equal(t, []string{
		"/football/201-zenit-spartak/",
		"/football/202-cska-dynamo/",
		"/football/205-ural-fakel/",
	}, gotLinks)
}

func TestListingsWrongDay(t *testing.T) {
	loc := moscow(t)
	now := time.Date(2024, 5, 20, 18, 0, 0, 0, loc)
	assert.Empty(t, slices.Collect(Listings(listingsPage, now, loc)))
}

func TestListingsEmptyPage(t *testing.T) {
	loc := moscow(t)
	assert.Empty(t, slices.Collect(Listings("", time.Now(), loc)))
}
