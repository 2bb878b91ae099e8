package models

import "time"

// UnknownChannelID is the channel id used for channel names missing from the registry.
const UnknownChannelID = -1

// StreamScheme prefixes every stream address found on detail pages.
const StreamScheme = "acestream://"

// PlaylistHeader is the first line of every generated playlist.
const PlaylistHeader = "#EXTM3U\n"

// DefaultEntryTTL is how long a resolved playlist entry stays in the cache table.
const DefaultEntryTTL = 24 * time.Hour
