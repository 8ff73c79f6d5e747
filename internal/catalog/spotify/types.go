package spotify

// searchResponse is the JSON response from the search endpoint with type=artist.
type searchResponse struct {
	Artists struct {
		Items []*artistObject `json:"items"`
		Total int             `json:"total"`
		Next  string          `json:"next,omitempty"`
	} `json:"artists"`
}

// artistObject is a full artist entry.
type artistObject struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Genres    []string `json:"genres"`
	Followers struct {
		Total int `json:"total"`
	} `json:"followers"`
	Popularity int           `json:"popularity"`
	Images     []imageObject `json:"images"`
}

// imageObject is an image reference. Width and height are null for some
// user-uploaded images and decode as zero.
type imageObject struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// topTracksResponse is the JSON response from the artist top-tracks endpoint.
type topTracksResponse struct {
	Tracks []*trackObject `json:"tracks"`
}

// trackObject is a full track with its simplified album.
type trackObject struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Popularity int         `json:"popularity"`
	Album      albumObject `json:"album"`
}

// albumObject is a simplified album as embedded in tracks and album listings.
type albumObject struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	AlbumType            string        `json:"album_type"`
	AlbumGroup           string        `json:"album_group,omitempty"`
	ReleaseDate          string        `json:"release_date"`
	ReleaseDatePrecision string        `json:"release_date_precision"`
	TotalTracks          int           `json:"total_tracks"`
	Images               []imageObject `json:"images"`
}

// albumsPage is one page of an artist's albums.
type albumsPage struct {
	Items  []*albumObject `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Total  int            `json:"total"`
	Next   string         `json:"next,omitempty"`
}

// albumTracksPage is one page of an album's tracks. Simplified tracks carry
// no popularity.
type albumTracksPage struct {
	Items []*struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		DiscNumber  int    `json:"disc_number"`
		TrackNumber int    `json:"track_number"`
	} `json:"items"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Total  int    `json:"total"`
	Next   string `json:"next,omitempty"`
}
