package launch

import "strconv"

// Table flattens the summary into a header and string rows for CSV and
// HTML renderers.
func (s OutcomeSummary) Table() ([]string, [][]string) {
	header := []string{"label", "count"}
	if s.Mode == ModeAllSites {
		header = []string{"launch_site", "successes"}
	}
	rows := make([][]string, 0, len(s.Slices))
	for _, slice := range s.Slices {
		rows = append(rows, []string{slice.Label, strconv.Itoa(slice.Count)})
	}
	return header, rows
}

// PointsTable flattens filtered points into a header and string rows.
func PointsTable(points []Point) ([]string, [][]string) {
	header := []string{"launch_site", "payload_mass_kg", "booster_version_category", "class"}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.LaunchSite,
			formatMass(p.PayloadMassKg),
			p.BoosterVersionCategory,
			strconv.Itoa(int(p.Class)),
		})
	}
	return header, rows
}
