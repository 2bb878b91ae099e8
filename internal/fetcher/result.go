package fetcher

import "github.com/voyagen/pimplecast/internal/models"

// Candidate is a completed listing record plus whether it was marked finished.
type Candidate struct {
	models.Broadcast
	Finished bool
}
