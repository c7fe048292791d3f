package core

import "time"

// Track represents the currently playing content on a device.
type Track struct {
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	Duration time.Duration `json:"duration"`
	ArtURL   string        `json:"art_url,omitempty"`
}
