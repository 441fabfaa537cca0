package dockerhub

import "time"

type GetImageTagsResponse struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []ImageTag `json:"results"`
}

type ImageTag struct {
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"last_updated"`

	TagStatus     string     `json:"tag_status"`
	TagLastPulled *time.Time `json:"tag_last_pulled"`
	TagLastPushed time.Time  `json:"tag_last_pushed"`
	Digest        string     `json:"digest"`
	FullSize      int        `json:"full_size"`
}
