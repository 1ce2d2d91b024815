// Package launch holds the immutable launch-record dataset and the two
// queries the dashboard is built on: outcome aggregation for the pie chart
// and payload filtering for the scatter chart.
package launch

import (
	"errors"
	"math"
)

// AllSites is the selection value meaning "every launch site".
const AllSites = "ALL"

// AllSitesLabel is the display label of the AllSites option.
const AllSitesLabel = "All Sites"

// Required CSV column names.
const (
	ColumnLaunchSite      = "Launch Site"
	ColumnPayloadMass     = "Payload Mass (kg)"
	ColumnBoosterCategory = "Booster Version Category"
	ColumnClass           = "class"
)

// RequiredColumns lists the header names a dataset must carry.
var RequiredColumns = []string{ColumnLaunchSite, ColumnPayloadMass, ColumnBoosterCategory, ColumnClass}

var (
	// ErrInvalidDataset wraps every loader failure.
	ErrInvalidDataset = errors.New("launch: invalid dataset")
	// ErrMissingColumn reports a required header that is absent.
	ErrMissingColumn = errors.New("launch: missing required column")
	// ErrInvalidSelection reports a site value that is neither AllSites nor a known site.
	ErrInvalidSelection = errors.New("launch: invalid site selection")
	// ErrInvalidRange reports a payload range with lo > hi or non-finite bounds.
	ErrInvalidRange = errors.New("launch: invalid payload range")
)

// Outcome is the binary mission result encoded by the dataset's class column.
type Outcome int

const (
	Failure Outcome = 0
	Success Outcome = 1
)

// Label returns "Success" or "Failure".
func (o Outcome) Label() string {
	if o == Success {
		return "Success"
	}
	return "Failure"
}

// Record is a single launch row. Values are copied out of the dataset, never shared.
type Record struct {
	LaunchSite             string  `json:"launch_site"`
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	BoosterVersionCategory string  `json:"booster_version_category"`
	Class                  Outcome `json:"class"`
}

// SiteOption is an entry of the site dropdown.
type SiteOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PayloadBounds holds the observed payload extremes.
type PayloadBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PayloadRange is an inclusive payload selection.
type PayloadRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Range returns the bounds as a selectable range.
func (b PayloadBounds) Range() PayloadRange { return PayloadRange{Lo: b.Min, Hi: b.Max} }

// Contains reports whether v lies within [Lo, Hi].
func (r PayloadRange) Contains(v float64) bool { return v >= r.Lo && v <= r.Hi }

func (r PayloadRange) validate() error {
	if math.IsNaN(r.Lo) || math.IsNaN(r.Hi) || math.IsInf(r.Lo, 0) || math.IsInf(r.Hi, 0) {
		return ErrInvalidRange
	}
	if r.Lo > r.Hi {
		return ErrInvalidRange
	}
	return nil
}

// SummaryMode distinguishes the two shapes of an OutcomeSummary.
type SummaryMode string

const (
	// ModeAllSites summaries hold one success count per site.
	ModeAllSites SummaryMode = "all"
	// ModeSite summaries hold Success and Failure counts for one site.
	ModeSite SummaryMode = "site"
)

// OutcomeSlice is one labelled count of a summary.
type OutcomeSlice struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// OutcomeSummary is the result of AggregateOutcomes.
type OutcomeSummary struct {
	Mode   SummaryMode    `json:"mode"`
	Site   string         `json:"site"`
	Title  string         `json:"title"`
	Slices []OutcomeSlice `json:"slices"`
}

// Total sums every slice count.
func (s OutcomeSummary) Total() int {
	total := 0
	for _, slice := range s.Slices {
		total += slice.Count
	}
	return total
}

// Count returns the count for label and whether it is present.
func (s OutcomeSummary) Count(label string) (int, bool) {
	for _, slice := range s.Slices {
		if slice.Label == label {
			return slice.Count, true
		}
	}
	return 0, false
}

// Point is a filtered record exposed for plotting.
type Point struct {
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	Class                  Outcome `json:"class"`
	BoosterVersionCategory string  `json:"booster_version_category"`
	LaunchSite             string  `json:"launch_site"`
}
