package chart_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"launchdash/internal/chart"
	"launchdash/internal/launch"
)

func decodeSize(t *testing.T, b []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestPieRendersPNG(t *testing.T) {
	summary := launch.OutcomeSummary{
		Mode:   launch.ModeSite,
		Site:   "KSC LC-39A",
		Title:  "Success vs Failure for KSC LC-39A",
		Slices: []launch.OutcomeSlice{{Label: "Success", Count: 10}, {Label: "Failure", Count: 3}},
	}
	b, err := chart.Pie(summary, chart.Options{})
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	if w, h := decodeSize(t, b); w != chart.DefaultWidth || h != chart.DefaultHeight {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}

func TestPieSkipsZeroSlices(t *testing.T) {
	summary := launch.OutcomeSummary{
		Title:  "Success vs Failure for X",
		Slices: []launch.OutcomeSlice{{Label: "Success", Count: 4}, {Label: "Failure", Count: 0}},
	}
	if _, err := chart.Pie(summary, chart.Options{Width: 320, Height: 240}); err != nil {
		t.Fatalf("pie with a zero slice: %v", err)
	}
	summary.Slices[0].Count = 0
	if _, err := chart.Pie(summary, chart.Options{}); !errors.Is(err, chart.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func decodeImage(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar>>8 == br>>8 && ag>>8 == bg>>8 && ab>>8 == bb>>8 && aa>>8 == ba>>8
}

var (
	successColor = color.RGBA{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff}
	failureColor = color.RGBA{R: 0xef, G: 0x55, B: 0x3b, A: 0xff}
)

func TestPieSingleSliceFillsDisc(t *testing.T) {
	summary := launch.OutcomeSummary{
		Title:  "Success vs Failure for X",
		Slices: []launch.OutcomeSlice{{Label: "Success", Count: 4}, {Label: "Failure", Count: 0}},
	}
	b, err := chart.Pie(summary, chart.Options{Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	img := decodeImage(t, b)
	// centre of the area below the title band
	if got := img.At(160, 138); !sameColor(got, successColor) {
		t.Fatalf("expected success colour at pie centre, got %v", got)
	}

	summary.Slices = []launch.OutcomeSlice{{Label: "Success", Count: 0}, {Label: "Failure", Count: 2}}
	b, err = chart.Pie(summary, chart.Options{Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	if got := decodeImage(t, b).At(160, 138); !sameColor(got, failureColor) {
		t.Fatalf("expected failure colour at pie centre, got %v", got)
	}
}

func TestPieTitleClearOfSlices(t *testing.T) {
	summary := launch.OutcomeSummary{
		Title:  "Total Success Launches By Site",
		Slices: []launch.OutcomeSlice{{Label: "A", Count: 5}, {Label: "B", Count: 5}},
	}
	b, err := chart.Pie(summary, chart.Options{Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	img := decodeImage(t, b)
	for y := 0; y < 32; y++ {
		for x := 0; x < 320; x++ {
			if c := img.At(x, y); sameColor(c, successColor) || sameColor(c, failureColor) {
				t.Fatalf("slice colour in title band at (%d,%d)", x, y)
			}
		}
	}
	found := false
	for y := 32; y < 240 && !found; y++ {
		for x := 0; x < 320; x++ {
			if sameColor(img.At(x, y), successColor) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("no slice drawn below the title band")
	}
}

func TestScatterRendersPNG(t *testing.T) {
	points := []launch.Point{
		{PayloadMassKg: 500, Class: launch.Success, BoosterVersionCategory: "v1.1", LaunchSite: "A"},
		{PayloadMassKg: 2500, Class: launch.Failure, BoosterVersionCategory: "FT", LaunchSite: "A"},
		{PayloadMassKg: 9600, Class: launch.Success, BoosterVersionCategory: "B4", LaunchSite: "B"},
	}
	b, err := chart.Scatter(points, launch.ScatterTitle(launch.AllSites), chart.Options{Width: 640, Height: 400})
	if err != nil {
		t.Fatalf("scatter: %v", err)
	}
	if w, h := decodeSize(t, b); w != 640 || h != 400 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}

func TestScatterSinglePoint(t *testing.T) {
	points := []launch.Point{{PayloadMassKg: 4200, Class: launch.Success, BoosterVersionCategory: "FT"}}
	if _, err := chart.Scatter(points, "single", chart.Options{}); err != nil {
		t.Fatalf("scatter single point: %v", err)
	}
}

func TestScatterEmpty(t *testing.T) {
	if _, err := chart.Scatter(nil, "empty", chart.Options{}); !errors.Is(err, chart.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestPlaceholder(t *testing.T) {
	b, err := chart.Placeholder("Payload vs Mission Outcome for All Sites", "no data", chart.Options{Width: 300, Height: 200})
	if err != nil {
		t.Fatalf("placeholder: %v", err)
	}
	if w, h := decodeSize(t, b); w != 300 || h != 200 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}
