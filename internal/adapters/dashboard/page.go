package dashboard

import (
	"bytes"
	"html/template"
	"net/http"

	"k8s.io/klog/v2"

	"launchdash/internal/launch"
)

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { text-align: center; color: #503D36; font-size: 40px; }
.chart { display: block; margin: 1em auto; max-width: 100%; }
.slider { display: flex; gap: 1em; align-items: center; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<label for="{{.Dropdown.ID}}">{{.Dropdown.Placeholder}}</label>
<select id="{{.Dropdown.ID}}">
{{- range .Dropdown.Options}}
<option value="{{.Value}}"{{if eq .Value $.Dropdown.Value}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
<img id="{{.PieChartID}}" class="chart" alt="Launch outcomes" src="/api/v1/charts/success-pie.png?site={{.Dropdown.Value}}">
<p>Payload range (Kg):</p>
<div class="slider" id="{{.Slider.ID}}">
<input type="range" name="min" min="{{.Slider.Min}}" max="{{.Slider.Max}}" step="{{.Slider.Step}}" value="{{index .Slider.Value 0}}">
<input type="range" name="max" min="{{.Slider.Min}}" max="{{.Slider.Max}}" step="{{.Slider.Step}}" value="{{index .Slider.Value 1}}">
<output></output>
</div>
<img id="{{.ScatterChartID}}" class="chart" alt="Payload and outcome correlation" src="/api/v1/charts/payload-scatter.png?site={{.Dropdown.Value}}&min={{index .Slider.Value 0}}&max={{index .Slider.Value 1}}">
<script>
(function () {
  var site = document.getElementById({{.Dropdown.ID}});
  var slider = document.getElementById({{.Slider.ID}});
  var lo = slider.querySelector('input[name=min]');
  var hi = slider.querySelector('input[name=max]');
  var out = slider.querySelector('output');
  var pie = document.getElementById({{.PieChartID}});
  var scatter = document.getElementById({{.ScatterChartID}});
  function refresh() {
    var a = Math.min(+lo.value, +hi.value), b = Math.max(+lo.value, +hi.value);
    var q = new URLSearchParams({site: site.value});
    out.textContent = a + ' - ' + b;
    pie.src = '/api/v1/charts/success-pie.png?' + q;
    q.set('min', a); q.set('max', b);
    scatter.src = '/api/v1/charts/payload-scatter.png?' + q;
  }
  site.addEventListener('change', refresh);
  lo.addEventListener('change', refresh);
  hi.addEventListener('change', refresh);
  refresh();
})();
</script>
</body>
</html>
`))

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := renderPage(&buf, h.Dataset.Layout()); err != nil {
		klog.FromContext(r.Context()).Error(err, "render dashboard page")
		writeError(w, http.StatusInternalServerError, "render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func renderPage(buf *bytes.Buffer, layout launch.Layout) error {
	return pageTemplate.Execute(buf, layout)
}
