package launch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"launchdash/internal/blob"
)

// Load parses a CSV dataset. The header row must contain every entry of
// RequiredColumns; other columns are ignored.
func Load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidDataset, err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	reader.FieldsPerRecord = len(header)

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDataset, line, err)
		}
		records = append(records, rec)
	}
	return NewDataset(records)
}

// LoadFile opens and parses the CSV dataset at path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return ds, nil
}

// LoadBlob reads the CSV dataset stored under key in store.
func LoadBlob(ctx context.Context, store blob.Store, key string) (*Dataset, error) {
	if store == nil {
		return nil, fmt.Errorf("load dataset blob %s: blob store not configured", key)
	}
	_, body, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get dataset blob %s: %w", key, err)
	}
	defer func() { _ = body.Close() }()
	ds, err := Load(body)
	if err != nil {
		return nil, fmt.Errorf("load dataset blob %s: %w", key, err)
	}
	return ds, nil
}

type columns struct {
	site, payload, booster, class int
}

func columnIndex(header []string) (columns, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %w: %s", ErrInvalidDataset, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return columns{
		site:    positions[ColumnLaunchSite],
		payload: positions[ColumnPayloadMass],
		booster: positions[ColumnBoosterCategory],
		class:   positions[ColumnClass],
	}, nil
}

func parseRow(row []string, idx columns) (Record, error) {
	site := strings.TrimSpace(row[idx.site])
	if site == "" {
		return Record{}, errors.New("empty launch site")
	}
	payload, err := strconv.ParseFloat(strings.TrimSpace(row[idx.payload]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("payload mass %q: %v", row[idx.payload], err)
	}
	if payload < 0 || math.IsNaN(payload) || math.IsInf(payload, 0) {
		return Record{}, fmt.Errorf("payload mass %q out of range", row[idx.payload])
	}
	class, err := parseOutcome(row[idx.class])
	if err != nil {
		return Record{}, err
	}
	return Record{
		LaunchSite:             site,
		PayloadMassKg:          payload,
		BoosterVersionCategory: strings.TrimSpace(row[idx.booster]),
		Class:                  class,
	}, nil
}

// parseOutcome accepts "0"/"1" and their float spellings ("1.0").
func parseOutcome(raw string) (Outcome, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("class %q: %v", raw, err)
	}
	switch v {
	case 0:
		return Failure, nil
	case 1:
		return Success, nil
	default:
		return 0, fmt.Errorf("class %q must be 0 or 1", raw)
	}
}
