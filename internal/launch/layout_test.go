package launch_test

import (
	"testing"

	"launchdash/internal/launch"
)

func TestLayout(t *testing.T) {
	ds := mustDataset(t,
		rec("CCAFS LC-40", 362, "v1.0", launch.Success),
		rec("KSC LC-39A", 9600, "B4", launch.Failure),
	)
	layout := ds.Layout()
	if layout.Title != "SpaceX Launch Records Dashboard" {
		t.Fatalf("unexpected title %q", layout.Title)
	}
	if layout.Dropdown.ID != "site-dropdown" || layout.Dropdown.Value != launch.AllSites || !layout.Dropdown.Searchable {
		t.Fatalf("unexpected dropdown %+v", layout.Dropdown)
	}
	if len(layout.Dropdown.Options) != 3 {
		t.Fatalf("expected sentinel + 2 sites, got %d", len(layout.Dropdown.Options))
	}
	s := layout.Slider
	if s.Min != 0 || s.Max != 9600 || s.Step != 1000 {
		t.Fatalf("unexpected slider bounds %+v", s)
	}
	if s.Value != [2]float64{362, 9600} {
		t.Fatalf("unexpected slider value %v", s.Value)
	}
	if s.Marks["362"] != "362" || s.Marks["9600"] != "9600" {
		t.Fatalf("unexpected marks %v", s.Marks)
	}
	if layout.PieChartID != "success-pie-chart" || layout.ScatterChartID != "success-payload-scatter-chart" {
		t.Fatalf("unexpected graph ids %+v", layout)
	}
}
