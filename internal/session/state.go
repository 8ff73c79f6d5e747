// Package session owns the per-browser navigation state and the transition
// rules between the dashboard's views.
package session

import "github.com/sydlexius/spotilytics/internal/catalog"

// View identifies which screen a State presents.
type View string

// Known views.
const (
	ViewWelcome        View = "welcome"
	ViewSearchResults  View = "search_results"
	ViewArtistProfile  View = "artist_profile"
	ViewArtistNotFound View = "artist_not_found"
	ViewCompareWaiting View = "compare_waiting_second_pick"
	ViewCompare        View = "compare"
)

// State is the navigation state of one browser session. It is treated as a
// value: transitions return a new State and never mutate slices in place.
type State struct {
	// SearchText is the text currently in the search box.
	SearchText string `json:"search_text"`
	// LastSearch is the last term that was successfully sent to the catalog.
	LastSearch string `json:"last_search"`
	// Results holds the artists returned for LastSearch.
	Results []catalog.Artist `json:"results,omitempty"`
	// Selected is the artist whose profile is shown.
	Selected *catalog.Artist `json:"selected,omitempty"`
	// Comparing is set while a comparison is being assembled or shown.
	Comparing bool `json:"comparing"`
	// Anchor is the artist pinned as the left side of a comparison.
	Anchor *catalog.Artist `json:"anchor,omitempty"`
	// Rival is the second pick of a comparison.
	Rival *catalog.Artist `json:"rival,omitempty"`
	// RemoteError describes the last failed catalog call, if any.
	RemoteError string `json:"remote_error,omitempty"`
}

// View derives the screen the state presents. A selection always wins over
// the result list.
func (s State) View() View {
	if s.Comparing && s.Anchor != nil {
		if s.Rival != nil {
			return ViewCompare
		}
		return ViewCompareWaiting
	}
	if s.Selected != nil {
		return ViewArtistProfile
	}
	if s.SearchText == "" {
		return ViewWelcome
	}
	if len(s.Results) > 0 {
		return ViewSearchResults
	}
	return ViewArtistNotFound
}

// ShowsResults reports whether the result list is offered for picking.
func (s State) ShowsResults() bool {
	switch s.View() {
	case ViewSearchResults:
		return true
	case ViewCompareWaiting:
		return len(s.Results) > 0
	default:
		return false
	}
}

func findArtist(artists []catalog.Artist, id string) (catalog.Artist, bool) {
	for _, a := range artists {
		if a.ID == id {
			return a, true
		}
	}
	return catalog.Artist{}, false
}
