// Package playlist formats extended M3U entries and rewrites stream addresses
// for an Ace Stream engine.
package playlist

import (
	"fmt"
	"strings"

	"github.com/voyagen/pimplecast/internal/models"
)

// Entry formats one playlist fragment: the EXTINF metadata line followed by
// the stream address line.
func Entry(b models.Broadcast, channelID int, stream string) string {
	return fmt.Sprintf("#EXTINF:-1 type=\"stream\" channelId=\"%d\", %s %s (%s)\n%s\n",
		channelID, b.Time, b.Teams(), b.Channel, stream)
}

// Assemble writes the playlist header followed by fragments in order.
func Assemble(fragments []string) string {
	var sb strings.Builder
	sb.WriteString(models.PlaylistHeader)
	for _, f := range fragments {
		sb.WriteString(f)
	}
	return sb.String()
}

// EngineURL returns the prefix that replaces models.StreamScheme so the
// Ace Stream engine at hostPort serves the stream.
func EngineURL(hostPort string) string {
	return "http://" + hostPort + "/ace/getstream?id="
}

// Rewrite replaces every acestream:// address in text with an engine URL.
func Rewrite(text, hostPort string) string {
	return strings.ReplaceAll(text, models.StreamScheme, EngineURL(hostPort))
}
