package launch

import (
	"fmt"
	"sort"
)

// Dataset is the read-only collection of launch records loaded at startup.
// It has no mutators; every accessor returns a copy, so a *Dataset can be
// shared by concurrent handlers without locking.
type Dataset struct {
	records []Record
	sites   []string
	siteIdx map[string]struct{}
	bounds  PayloadBounds
}

// NewDataset builds a dataset from records. The slice is copied.
func NewDataset(records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidDataset)
	}
	cp := make([]Record, len(records))
	copy(cp, records)

	siteIdx := make(map[string]struct{})
	bounds := PayloadBounds{Min: cp[0].PayloadMassKg, Max: cp[0].PayloadMassKg}
	for i, rec := range cp {
		if rec.LaunchSite == "" {
			return nil, fmt.Errorf("%w: record %d has empty launch site", ErrInvalidDataset, i)
		}
		if rec.LaunchSite == AllSites {
			return nil, fmt.Errorf("%w: record %d uses the reserved site name %q", ErrInvalidDataset, i, AllSites)
		}
		if rec.PayloadMassKg < 0 {
			return nil, fmt.Errorf("%w: record %d has negative payload %g", ErrInvalidDataset, i, rec.PayloadMassKg)
		}
		if rec.Class != Success && rec.Class != Failure {
			return nil, fmt.Errorf("%w: record %d has class %d", ErrInvalidDataset, i, rec.Class)
		}
		siteIdx[rec.LaunchSite] = struct{}{}
		if rec.PayloadMassKg < bounds.Min {
			bounds.Min = rec.PayloadMassKg
		}
		if rec.PayloadMassKg > bounds.Max {
			bounds.Max = rec.PayloadMassKg
		}
	}
	sites := make([]string, 0, len(siteIdx))
	for site := range siteIdx {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	return &Dataset{records: cp, sites: sites, siteIdx: siteIdx, bounds: bounds}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of every record in load order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Sites returns the distinct launch sites sorted lexicographically.
func (d *Dataset) Sites() []string {
	return append([]string(nil), d.sites...)
}

// HasSite reports whether name is a launch site present in the dataset.
func (d *Dataset) HasSite(name string) bool {
	_, ok := d.siteIdx[name]
	return ok
}

// SiteOptions returns the dropdown options: the AllSites sentinel first,
// followed by every site in lexicographic order.
func (d *Dataset) SiteOptions() []SiteOption {
	options := make([]SiteOption, 0, len(d.sites)+1)
	options = append(options, SiteOption{Label: AllSitesLabel, Value: AllSites})
	for _, site := range d.sites {
		options = append(options, SiteOption{Label: site, Value: site})
	}
	return options
}

// PayloadBounds returns the minimum and maximum payload observed.
func (d *Dataset) PayloadBounds() PayloadBounds { return d.bounds }

// ValidateSelection returns ErrInvalidSelection unless site is AllSites or a known site.
func (d *Dataset) ValidateSelection(site string) error {
	if site == AllSites || d.HasSite(site) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSelection, site)
}
