package models

import (
	"strconv"
	"time"
)

// PlaceholderImageURL is used wherever an image was not supplied.
const PlaceholderImageURL = "https://via.placeholder.com/200.png?text=profile"

// Image references a file held by the media host.
type Image struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"public_id" bson:"public_id"`
}

// PlaceholderImage returns the default image, keyed by the current time in milliseconds.
func PlaceholderImage() Image {
	return Image{
		URL:      PlaceholderImageURL,
		PublicID: strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
}

// WithDefaults fills empty fields from the placeholder image.
func (i Image) WithDefaults() Image {
	p := PlaceholderImage()
	if i.URL == "" {
		i.URL = p.URL
	}
	if i.PublicID == "" {
		i.PublicID = p.PublicID
	}
	return i
}
