package launch

import "strconv"

// Component identifiers used by the dashboard page and its script.
const (
	DropdownID     = "site-dropdown"
	SliderID       = "payload-slider"
	PieChartID     = "success-pie-chart"
	ScatterChartID = "success-payload-scatter-chart"
)

// DashboardTitle is the heading of the dashboard page.
const DashboardTitle = "SpaceX Launch Records Dashboard"

// SliderStep is the payload slider increment in kilograms.
const SliderStep = 1000

// Dropdown describes the site selection control.
type Dropdown struct {
	ID          string       `json:"id"`
	Options     []SiteOption `json:"options"`
	Value       string       `json:"value"`
	Placeholder string       `json:"placeholder"`
	Searchable  bool         `json:"searchable"`
}

// RangeSlider describes the payload range control.
type RangeSlider struct {
	ID    string            `json:"id"`
	Min   float64           `json:"min"`
	Max   float64           `json:"max"`
	Step  float64           `json:"step"`
	Marks map[string]string `json:"marks"`
	Value [2]float64        `json:"value"`
}

// Layout is the static description of the dashboard controls and graphs.
type Layout struct {
	Title          string      `json:"title"`
	Dropdown       Dropdown    `json:"dropdown"`
	Slider         RangeSlider `json:"slider"`
	PieChartID     string      `json:"pie_chart_id"`
	ScatterChartID string      `json:"scatter_chart_id"`
}

// Layout derives the control layout from the dataset. The slider always
// starts at zero and spans up to the heaviest payload; its initial selection
// is the observed payload bounds. A zero-width bounds range is valid.
func (d *Dataset) Layout() Layout {
	bounds := d.PayloadBounds()
	return Layout{
		Title: DashboardTitle,
		Dropdown: Dropdown{
			ID:          DropdownID,
			Options:     d.SiteOptions(),
			Value:       AllSites,
			Placeholder: "Select a Launch Site",
			Searchable:  true,
		},
		Slider: RangeSlider{
			ID:   SliderID,
			Min:  0,
			Max:  bounds.Max,
			Step: SliderStep,
			Marks: map[string]string{
				formatMass(bounds.Min): formatMass(bounds.Min),
				formatMass(bounds.Max): formatMass(bounds.Max),
			},
			Value: [2]float64{bounds.Min, bounds.Max},
		},
		PieChartID:     PieChartID,
		ScatterChartID: ScatterChartID,
	}
}

func formatMass(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
