package models

import "fmt"

// Broadcast is one match listing scraped from the football category page.
// Link is the detail page path and doubles as the cache key.
type Broadcast struct {
	Link     string `json:"link"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Channel  string `json:"channel"`
	Time     string `json:"time"` // HH:MM in the reference timezone
	Live     bool   `json:"live"`
}

// Teams returns the display label "home – away".
func (b Broadcast) Teams() string {
	return fmt.Sprintf("%s – %s", b.HomeTeam, b.AwayTeam)
}
