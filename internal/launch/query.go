package launch

import "fmt"

// PieTitle returns the pie chart title for a selection.
func PieTitle(site string) string {
	if site == AllSites {
		return "Total Successful Launches by Site"
	}
	return fmt.Sprintf("Success vs Failure for %s", site)
}

// ScatterTitle returns the scatter chart title for a selection.
func ScatterTitle(site string) string {
	if site == AllSites {
		return "Payload vs Mission Outcome for All Sites"
	}
	return fmt.Sprintf("Payload vs Mission Outcome for %s", site)
}

// AggregateOutcomes summarises mission outcomes for the pie chart.
//
// For AllSites the summary holds one slice per site (sorted by name) whose
// count is the number of successful launches from that site. For a single
// site it holds a "Success" and a "Failure" slice, in that order, both
// always present so a site without failures reports Failure = 0.
func (d *Dataset) AggregateOutcomes(selectedSite string) (OutcomeSummary, error) {
	if err := d.ValidateSelection(selectedSite); err != nil {
		return OutcomeSummary{}, err
	}
	summary := OutcomeSummary{Site: selectedSite, Title: PieTitle(selectedSite)}

	if selectedSite == AllSites {
		summary.Mode = ModeAllSites
		successes := make(map[string]int, len(d.sites))
		for _, rec := range d.records {
			successes[rec.LaunchSite] += int(rec.Class)
		}
		summary.Slices = make([]OutcomeSlice, 0, len(d.sites))
		for _, site := range d.sites {
			summary.Slices = append(summary.Slices, OutcomeSlice{Label: site, Count: successes[site]})
		}
		return summary, nil
	}

	summary.Mode = ModeSite
	var success, failure, seen int
	for _, rec := range d.records {
		if rec.LaunchSite != selectedSite {
			continue
		}
		seen++
		if rec.Class == Success {
			success++
		} else {
			failure++
		}
	}
	if seen == 0 {
		summary.Slices = []OutcomeSlice{}
		return summary, nil
	}
	summary.Slices = []OutcomeSlice{
		{Label: Success.Label(), Count: success},
		{Label: Failure.Label(), Count: failure},
	}
	return summary, nil
}

// FilterPayloadOutcomes returns the records whose payload lies within rng
// (inclusive), restricted to selectedSite unless it is AllSites. Points keep
// dataset order. An empty, non-nil slice is returned when nothing matches.
func (d *Dataset) FilterPayloadOutcomes(selectedSite string, rng PayloadRange) ([]Point, error) {
	if err := d.ValidateSelection(selectedSite); err != nil {
		return nil, err
	}
	if err := rng.validate(); err != nil {
		return nil, fmt.Errorf("%w: [%g, %g]", err, rng.Lo, rng.Hi)
	}
	points := make([]Point, 0)
	for _, rec := range d.records {
		if !rng.Contains(rec.PayloadMassKg) {
			continue
		}
		if selectedSite != AllSites && rec.LaunchSite != selectedSite {
			continue
		}
		points = append(points, Point{
			PayloadMassKg:          rec.PayloadMassKg,
			Class:                  rec.Class,
			BoosterVersionCategory: rec.BoosterVersionCategory,
			LaunchSite:             rec.LaunchSite,
		})
	}
	return points, nil
}
