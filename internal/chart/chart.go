// Package chart builds declarative Chart.js configurations from prepared
// tables. Nothing here draws; the browser renders the configurations.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
)

// Chart is one chart slot on a page. A chart without a Config is empty and
// shows Message instead.
type Chart struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Height  int     `json:"height"`
	Config  *Config `json:"config,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool { return c.Config == nil }

// ConfigJSON returns the Chart.js configuration as a JSON document.
func (c Chart) ConfigJSON() (string, error) {
	if c.Config == nil {
		return "", fmt.Errorf("chart %s has no configuration", c.ID)
	}
	b, err := json.Marshal(c.Config)
	if err != nil {
		return "", fmt.Errorf("encoding chart %s: %w", c.ID, err)
	}
	return string(b), nil
}

// Config mirrors the subset of the Chart.js configuration object in use.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the category labels and the series.
type Data struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series. Data holds []float64 for bar and radar charts and
// []Point for bubble charts.
type Dataset struct {
	Label           string `json:"label,omitempty"`
	Data            any    `json:"data"`
	BackgroundColor any    `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	BorderWidth     int    `json:"borderWidth,omitempty"`
}

// Point is a bubble chart datum. Name is shown in the tooltip.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	R    float64 `json:"r"`
	Name string  `json:"name,omitempty"`
}

// Options are the chart-wide settings.
type Options struct {
	IndexAxis           string           `json:"indexAxis,omitempty"`
	Responsive          bool             `json:"responsive"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
	Plugins             Plugins          `json:"plugins"`
	Scales              map[string]Scale `json:"scales,omitempty"`
}

// Plugins configures the title and legend plugins.
type Plugins struct {
	Title  Title  `json:"title"`
	Legend Legend `json:"legend"`
}

// Title is a chart or axis caption.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text,omitempty"`
}

// Legend toggles the series legend.
type Legend struct {
	Display bool `json:"display"`
}

// Scale configures one axis.
type Scale struct {
	Title        *Title   `json:"title,omitempty"`
	BeginAtZero  bool     `json:"beginAtZero,omitempty"`
	SuggestedMax *float64 `json:"suggestedMax,omitempty"`
	Ticks        *Ticks   `json:"ticks,omitempty"`
}

// Ticks configures axis tick marks.
type Ticks struct {
	Precision *int `json:"precision,omitempty"`
}

func newOptions(title string, legend bool) Options {
	return Options{
		Responsive:          true,
		MaintainAspectRatio: false,
		Plugins: Plugins{
			Title:  Title{Display: title != "", Text: title},
			Legend: Legend{Display: legend},
		},
	}
}

func axis(text string) Scale {
	return Scale{Title: &Title{Display: true, Text: text}, BeginAtZero: true}
}

func integerAxis(text string) Scale {
	s := axis(text)
	zero := 0
	s.Ticks = &Ticks{Precision: &zero}
	return s
}

func empty(id, title, message string, height int) Chart {
	return Chart{ID: id, Title: title, Height: height, Message: message}
}

// viridisStops samples the viridis colour map at 0, .25, .5, .75 and 1.
var viridisStops = [][3]float64{
	{68, 1, 84},
	{59, 82, 139},
	{33, 145, 140},
	{94, 201, 98},
	{253, 231, 37},
}

// viridis maps v in [0, 1] onto the viridis colour map.
func viridis(v float64) string {
	v = math.Max(0, math.Min(1, v))
	pos := v * float64(len(viridisStops)-1)
	i := int(math.Floor(pos))
	if i >= len(viridisStops)-1 {
		c := viridisStops[len(viridisStops)-1]
		return rgb(c[0], c[1], c[2])
	}
	f := pos - float64(i)
	lo, hi := viridisStops[i], viridisStops[i+1]
	return rgb(
		lo[0]+(hi[0]-lo[0])*f,
		lo[1]+(hi[1]-lo[1])*f,
		lo[2]+(hi[2]-lo[2])*f,
	)
}

func rgb(r, g, b float64) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", int(math.Round(r)), int(math.Round(g)), int(math.Round(b)))
}
