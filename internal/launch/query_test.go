package launch_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"launchdash/internal/launch"
)

func mustDataset(t *testing.T, records ...launch.Record) *launch.Dataset {
	t.Helper()
	ds, err := launch.NewDataset(records)
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	return ds
}

func rec(site string, payload float64, booster string, class launch.Outcome) launch.Record {
	return launch.Record{LaunchSite: site, PayloadMassKg: payload, BoosterVersionCategory: booster, Class: class}
}

func exampleDataset(t *testing.T) *launch.Dataset {
	return mustDataset(t,
		rec("CCAFS", 500, "v1.0", launch.Success),
		rec("KSC", 2500, "FT", launch.Success),
		rec("CCAFS", 3000, "v1.1", launch.Success),
		rec("KSC", 5300, "FT", launch.Failure),
		rec("CCAFS", 9600, "B4", launch.Failure),
	)
}

func TestAggregateOutcomesAllSites(t *testing.T) {
	ds := exampleDataset(t)
	summary, err := ds.AggregateOutcomes(launch.AllSites)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []launch.OutcomeSlice{{Label: "CCAFS", Count: 2}, {Label: "KSC", Count: 1}}
	if !reflect.DeepEqual(summary.Slices, want) {
		t.Fatalf("unexpected slices %+v", summary.Slices)
	}
	if summary.Mode != launch.ModeAllSites || summary.Title != "Total Successful Launches by Site" {
		t.Fatalf("unexpected summary header %+v", summary)
	}
}

func TestAggregateOutcomesSingleSite(t *testing.T) {
	ds := exampleDataset(t)
	summary, err := ds.AggregateOutcomes("KSC")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []launch.OutcomeSlice{{Label: "Success", Count: 1}, {Label: "Failure", Count: 1}}
	if !reflect.DeepEqual(summary.Slices, want) {
		t.Fatalf("unexpected slices %+v", summary.Slices)
	}
	if summary.Mode != launch.ModeSite || summary.Title != "Success vs Failure for KSC" {
		t.Fatalf("unexpected summary header %+v", summary)
	}
}

func TestAggregateOutcomesCountsSumToSiteTotal(t *testing.T) {
	ds := exampleDataset(t)
	for _, site := range ds.Sites() {
		summary, err := ds.AggregateOutcomes(site)
		if err != nil {
			t.Fatalf("aggregate %s: %v", site, err)
		}
		total := 0
		for _, r := range ds.Records() {
			if r.LaunchSite == site {
				total++
			}
		}
		if summary.Total() != total {
			t.Fatalf("site %s: counts sum to %d, want %d", site, summary.Total(), total)
		}
	}
}

func TestAggregateOutcomesEmitsExplicitZero(t *testing.T) {
	ds := mustDataset(t,
		rec("VAFB SLC-4E", 9600, "FT", launch.Success),
		rec("VAFB SLC-4E", 500, "v1.1", launch.Success),
	)
	summary, err := ds.AggregateOutcomes("VAFB SLC-4E")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	failures, ok := summary.Count("Failure")
	if !ok || failures != 0 {
		t.Fatalf("expected explicit Failure=0, got %d present=%v", failures, ok)
	}
	if successes, _ := summary.Count("Success"); successes != 2 {
		t.Fatalf("expected Success=2, got %d", successes)
	}
}

func TestAggregateOutcomesInvalidSelection(t *testing.T) {
	ds := exampleDataset(t)
	for _, site := range []string{"", "all", "Mars Base"} {
		if _, err := ds.AggregateOutcomes(site); !errors.Is(err, launch.ErrInvalidSelection) {
			t.Fatalf("site %q: expected ErrInvalidSelection, got %v", site, err)
		}
	}
}

func TestFilterPayloadOutcomesInclusiveOrdered(t *testing.T) {
	ds := mustDataset(t,
		rec("A", 2000, "v1.0", launch.Success),
		rec("B", 6000, "FT", launch.Failure),
		rec("A", 4999, "B4", launch.Failure),
	)
	points, err := ds.FilterPayloadOutcomes(launch.AllSites, launch.PayloadRange{Lo: 0, Hi: 5000})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(points) != 2 || points[0].PayloadMassKg != 2000 || points[1].PayloadMassKg != 4999 {
		t.Fatalf("unexpected points %+v", points)
	}
	if points[1].BoosterVersionCategory != "B4" || points[1].Class != launch.Failure || points[1].LaunchSite != "A" {
		t.Fatalf("point fields not carried over: %+v", points[1])
	}

	boundary, err := ds.FilterPayloadOutcomes(launch.AllSites, launch.PayloadRange{Lo: 2000, Hi: 4999})
	if err != nil {
		t.Fatalf("filter boundary: %v", err)
	}
	if len(boundary) != 2 {
		t.Fatalf("expected both boundary records, got %+v", boundary)
	}
}

func TestFilterPayloadOutcomesSite(t *testing.T) {
	ds := exampleDataset(t)
	points, err := ds.FilterPayloadOutcomes("KSC", launch.PayloadRange{Lo: 0, Hi: 10000})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 KSC points, got %d", len(points))
	}
	for _, p := range points {
		if p.LaunchSite != "KSC" {
			t.Fatalf("unexpected site %s", p.LaunchSite)
		}
	}
}

func TestFilterPayloadOutcomesOutsideBounds(t *testing.T) {
	ds := exampleDataset(t)
	bounds := ds.PayloadBounds()
	ranges := []launch.PayloadRange{
		{Lo: bounds.Max + 1, Hi: bounds.Max + 1000},
		{Lo: 0, Hi: bounds.Min - 1},
	}
	for _, rng := range ranges {
		points, err := ds.FilterPayloadOutcomes(launch.AllSites, rng)
		if err != nil {
			t.Fatalf("filter %+v: %v", rng, err)
		}
		if points == nil || len(points) != 0 {
			t.Fatalf("expected empty non-nil result for %+v, got %#v", rng, points)
		}
	}
}

func TestFilterPayloadOutcomesInvalidInput(t *testing.T) {
	ds := exampleDataset(t)
	if _, err := ds.FilterPayloadOutcomes(launch.AllSites, launch.PayloadRange{Lo: 10, Hi: 5}); !errors.Is(err, launch.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	for _, rng := range []launch.PayloadRange{
		{Lo: 0, Hi: math.Inf(1)},
		{Lo: math.Inf(-1), Hi: 5000},
		{Lo: math.NaN(), Hi: 5000},
	} {
		if _, err := ds.FilterPayloadOutcomes(launch.AllSites, rng); !errors.Is(err, launch.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for %+v, got %v", rng, err)
		}
	}
	if _, err := ds.FilterPayloadOutcomes("Nowhere", launch.PayloadRange{Lo: 0, Hi: 5}); !errors.Is(err, launch.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	ds := exampleDataset(t)
	a1, _ := ds.AggregateOutcomes(launch.AllSites)
	a2, _ := ds.AggregateOutcomes(launch.AllSites)
	if !reflect.DeepEqual(a1, a2) {
		t.Fatalf("aggregate not idempotent")
	}
	rng := launch.PayloadRange{Lo: 1000, Hi: 6000}
	f1, _ := ds.FilterPayloadOutcomes("CCAFS", rng)
	f2, _ := ds.FilterPayloadOutcomes("CCAFS", rng)
	if !reflect.DeepEqual(f1, f2) {
		t.Fatalf("filter not idempotent")
	}
}

func TestScatterTitle(t *testing.T) {
	if got := launch.ScatterTitle(launch.AllSites); got != "Payload vs Mission Outcome for All Sites" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := launch.ScatterTitle("KSC LC-39A"); got != "Payload vs Mission Outcome for KSC LC-39A" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestTables(t *testing.T) {
	ds := exampleDataset(t)
	summary, _ := ds.AggregateOutcomes(launch.AllSites)
	header, rows := summary.Table()
	if header[0] != "launch_site" || len(rows) != 2 || rows[0][0] != "CCAFS" || rows[0][1] != "2" {
		t.Fatalf("unexpected summary table %v %v", header, rows)
	}
	points, _ := ds.FilterPayloadOutcomes("KSC", launch.PayloadRange{Lo: 0, Hi: 3000})
	header, rows = launch.PointsTable(points)
	if len(header) != 4 || len(rows) != 1 || rows[0][1] != "2500" || rows[0][3] != "1" {
		t.Fatalf("unexpected points table %v %v", header, rows)
	}
}
