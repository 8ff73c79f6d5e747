package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sydlexius/spotilytics/internal/catalog"
)

// Action names a user interaction.
type Action string

// Known actions.
const (
	ActionSearch        Action = "search"
	ActionPick          Action = "pick"
	ActionBack          Action = "back"
	ActionCompare       Action = "compare"
	ActionCancelCompare Action = "cancel_compare"
	ActionExitCompare   Action = "exit_compare"
)

// Event is one discrete user interaction.
type Event struct {
	Action   Action `json:"action"`
	Text     string `json:"text,omitempty"`
	ArtistID string `json:"artist_id,omitempty"`
}

// Transition errors. The state returned alongside them is unchanged.
var (
	ErrInvalidTransition = errors.New("action not allowed in the current view")
	ErrUnknownArtist     = errors.New("artist is not among the current results")
	ErrUnknownAction     = errors.New("unknown action")
)

// Searcher runs artist searches for the controller.
type Searcher interface {
	SearchArtists(ctx context.Context, query string) ([]catalog.Artist, error)
}

// Controller applies events to states.
type Controller struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewController creates a Controller backed by searcher.
func NewController(searcher Searcher, logger *slog.Logger) *Controller {
	return &Controller{
		searcher: searcher,
		logger:   logger.With(slog.String("component", "navigation")),
	}
}

// Apply returns the state that follows s after ev. On a catalog failure the
// returned state records RemoteError and the error is returned as well; on a
// rejected event the returned state equals s.
func (c *Controller) Apply(ctx context.Context, s State, ev Event) (State, error) {
	from := s.View()

	var (
		next State
		err  error
	)
	switch ev.Action {
	case ActionSearch:
		next, err = c.search(ctx, s, ev.Text)
	case ActionPick:
		next, err = c.pick(s, ev.ArtistID)
	case ActionBack:
		next, err = back(s)
	case ActionCompare:
		next, err = startCompare(s)
	case ActionCancelCompare:
		next, err = cancelCompare(s)
	case ActionExitCompare:
		next, err = exitCompare(s)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}

	if err != nil {
		c.logger.Debug("event rejected or failed",
			slog.String("action", string(ev.Action)),
			slog.String("view", string(from)),
			slog.String("error", err.Error()))
		return next, err
	}

	c.logger.Debug("transition",
		slog.String("action", string(ev.Action)),
		slog.String("from", string(from)),
		slog.String("to", string(next.View())))
	return next, nil
}

// search handles a change of the search text. Changing the text clears the
// current selection; the catalog is only queried for a term that differs
// from the last executed one.
func (c *Controller) search(ctx context.Context, s State, text string) (State, error) {
	text = strings.TrimSpace(text)
	if text == s.SearchText && (text == "" || text == s.LastSearch) {
		return s, nil
	}

	next := s
	next.SearchText = text
	next.Selected = nil
	next.Rival = nil
	next.RemoteError = ""

	if text == "" {
		next.Results = nil
		next.LastSearch = ""
		return next, nil
	}
	if text == s.LastSearch {
		return next, nil
	}

	results, err := c.searcher.SearchArtists(ctx, text)
	if err != nil {
		c.logger.Warn("artist search failed", slog.String("query", text), slog.Any("error", err))
		next.Results = nil
		next.LastSearch = ""
		next.RemoteError = describeRemoteError(err)
		return next, fmt.Errorf("searching artists: %w", err)
	}

	next.Results = results
	next.LastSearch = text
	return next, nil
}

// pick selects an artist from the current results. While a comparison waits
// for its second pick, the choice becomes the rival; picking the anchor
// again is ignored.
func (c *Controller) pick(s State, artistID string) (State, error) {
	view := s.View()
	if view != ViewSearchResults && view != ViewCompareWaiting {
		return s, invalid(ActionPick, view)
	}

	artist, ok := findArtist(s.Results, artistID)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownArtist, artistID)
	}

	next := s
	if view == ViewCompareWaiting {
		if artist.ID == s.Anchor.ID {
			c.logger.Debug("ignoring pick of comparison anchor", slog.String("artist_id", artist.ID))
			return s, nil
		}
		next.Rival = &artist
		return next, nil
	}

	next.Selected = &artist
	return next, nil
}

// back leaves a profile for the result list, or the welcome screen when the
// search text was cleared.
func back(s State) (State, error) {
	if view := s.View(); view != ViewArtistProfile {
		return s, invalid(ActionBack, view)
	}
	next := s
	next.Selected = nil
	return next, nil
}

// startCompare pins the profiled artist as the comparison anchor.
func startCompare(s State) (State, error) {
	if view := s.View(); view != ViewArtistProfile {
		return s, invalid(ActionCompare, view)
	}
	next := s
	next.Comparing = true
	next.Anchor = s.Selected
	next.Rival = nil
	next.Selected = nil
	return next, nil
}

// cancelCompare abandons a comparison that still waits for its second pick
// and returns to the welcome screen.
func cancelCompare(s State) (State, error) {
	if view := s.View(); view != ViewCompareWaiting {
		return s, invalid(ActionCancelCompare, view)
	}
	return State{}, nil
}

// exitCompare returns from the comparison to the anchor's profile.
func exitCompare(s State) (State, error) {
	if view := s.View(); view != ViewCompare {
		return s, invalid(ActionExitCompare, view)
	}
	next := s
	next.Selected = s.Anchor
	next.Comparing = false
	next.Anchor = nil
	next.Rival = nil
	return next, nil
}

func invalid(a Action, v View) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a, v)
}

// describeRemoteError renders a catalog failure for display.
func describeRemoteError(err error) string {
	var unavailable *catalog.ErrRemoteUnavailable
	if errors.As(err, &unavailable) {
		if unavailable.RetryAfter > 0 {
			return fmt.Sprintf("The music catalog is busy. Try again in %s.", unavailable.RetryAfter)
		}
		return "The music catalog could not be reached. Try again."
	}
	return "The search could not be completed. Try again."
}
