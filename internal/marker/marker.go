// Package marker maps earthquake magnitudes to display colors and radii.
// It is the single source of truth for marker styling: the API annotates
// events with it and the legend is generated from the same band table.
package marker

// UnknownColor is used for events with no reported magnitude.
const UnknownColor = "#9e9e9e"

// Band is one magnitude range mapped to a display color.
// Bands form a strict ordered cascade evaluated highest minimum first.
type Band struct {
	// Label is the legend text for the band.
	Label string `json:"label"`

	// Color is the marker fill color as a CSS hex value.
	Color string `json:"color"`

	// Min is the inclusive lower magnitude bound.
	Min float64 `json:"min"`
}

// bands is ordered highest threshold first; first match wins.
var bands = []Band{
	{Label: "7.0+", Color: "#67000d", Min: 7},
	{Label: "6.0–6.9", Color: "#d7301f", Min: 6},
	{Label: "5.0–5.9", Color: "#ef6548", Min: 5},
	{Label: "4.0–4.9", Color: "#fc8d59", Min: 4},
	{Label: "2.0–3.9", Color: "#fdbb84", Min: 2},
}

// lowColor covers every magnitude below the lowest band, negatives included.
const lowColor = "#fdd49e"

// ColorFor returns the display color for a magnitude. A nil magnitude
// means "unknown" and always maps to the neutral gray.
func ColorFor(mag *float64) string {
	if mag == nil {
		return UnknownColor
	}
	for _, b := range bands {
		if *mag >= b.Min {
			return b.Color
		}
	}
	return lowColor
}

// RadiusFor returns the marker radius in pixels. Unknown magnitudes are
// treated as 0. The floor of 3 keeps every marker visible; there is no
// upper cap, so large magnitudes produce proportionally large markers.
func RadiusFor(mag *float64) float64 {
	m := 0.0
	if mag != nil {
		m = *mag
	}
	r := m*2 + 3
	if r < 3 {
		return 3
	}
	return r
}

// Bands returns the full legend table, highest band first, ending with
// the below-2 band and the unknown-magnitude entry.
func Bands() []Band {
	out := make([]Band, 0, len(bands)+2)
	out = append(out, bands...)
	out = append(out,
		Band{Label: "< 2.0", Color: lowColor, Min: 0},
		Band{Label: "Unknown", Color: UnknownColor, Min: 0},
	)
	return out
}
