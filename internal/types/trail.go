package types

// BikeTrail is one trail suggested by the model. MapsURI is only set when a
// grounding reference matched the trail name.
type BikeTrail struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MapsURI     string `json:"mapsUri,omitempty"`
}

// MapReference is a place link taken from the model's grounding metadata.
type MapReference struct {
	URI   string
	Title string
}
