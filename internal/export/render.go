package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"launchdash/internal/chart"
	"launchdash/internal/launch"
)

// queryResult is the output of one dashboard query in every shape the
// renderers need.
type queryResult struct {
	title   string
	header  []string
	rows    [][]string
	value   any
	summary *launch.OutcomeSummary
	points  []launch.Point
}

type rendered struct {
	artifact Artifact
	payload  []byte
}

func materialize(format Format, result queryResult, opts chart.Options) (rendered, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)
	md := map[string]any{"rows": len(result.rows)}
	switch format {
	case FormatJSON:
		contentType = "application/json"
		payload, err = json.Marshal(result.value)
		if err != nil {
			return rendered{}, fmt.Errorf("marshal json: %w", err)
		}
	case FormatCSV:
		contentType = "text/csv"
		payload, err = encodeCSV(result.header, result.rows)
		if err != nil {
			return rendered{}, fmt.Errorf("encode csv: %w", err)
		}
	case FormatHTML:
		contentType = "text/html; charset=utf-8"
		payload, err = encodeHTML(result)
		if err != nil {
			return rendered{}, fmt.Errorf("render html: %w", err)
		}
	case FormatPNG:
		contentType = "image/png"
		var placeholder bool
		payload, placeholder, err = renderPNG(result, opts)
		if err != nil {
			return rendered{}, err
		}
		md["placeholder"] = placeholder
	default:
		return rendered{}, fmt.Errorf("unsupported export format %s", format)
	}
	return rendered{
		artifact: Artifact{
			Format:      format,
			ContentType: contentType,
			SizeBytes:   int64(len(payload)),
			Metadata:    md,
		},
		payload: payload,
	}, nil
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var htmlTable = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table></body></html>
`))

func encodeHTML(result queryResult) ([]byte, error) {
	var buf bytes.Buffer
	err := htmlTable.Execute(&buf, struct {
		Title  string
		Header []string
		Rows   [][]string
	}{result.title, result.header, result.rows})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPNG draws the chart matching the query, falling back to a
// placeholder when there is nothing to plot.
func renderPNG(result queryResult, opts chart.Options) ([]byte, bool, error) {
	var (
		payload []byte
		err     error
	)
	if result.summary != nil {
		payload, err = chart.Pie(*result.summary, opts)
	} else {
		payload, err = chart.Scatter(result.points, result.title, opts)
	}
	if errors.Is(err, chart.ErrEmpty) {
		payload, err = chart.Placeholder(result.title, "No launches match the selection", opts)
		if err != nil {
			return nil, false, err
		}
		return payload, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}
