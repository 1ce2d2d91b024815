package openapi

import (
	"bytes"
	"os"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestSpecReturnsCopyAndMatchesFile(t *testing.T) {
	want, err := os.ReadFile("launchdash.yaml")
	if err != nil {
		t.Fatalf("read launchdash.yaml: %v", err)
	}
	spec := Spec()
	if !bytes.Equal(spec, want) {
		t.Fatalf("Spec does not match embedded contents")
	}
	spec[0] ^= 0xFF
	if bytes.Equal(Spec(), spec) {
		t.Fatalf("Spec mutation leaked into embedded content")
	}
}

func TestSpecDocumentsRoutes(t *testing.T) {
	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(DashboardSpec, &doc); err != nil {
		t.Fatalf("decode spec: %v", err)
	}
	if doc.OpenAPI == "" {
		t.Fatalf("missing openapi version")
	}
	routes := map[string]string{
		"/":                                  "get",
		"/healthz":                           "get",
		"/api/v1/layout":                     "get",
		"/api/v1/sites":                      "get",
		"/api/v1/payload-bounds":             "get",
		"/api/v1/outcomes":                   "get",
		"/api/v1/payload-outcomes":           "get",
		"/api/v1/charts/success-pie.png":     "get",
		"/api/v1/charts/payload-scatter.png": "get",
		"/api/v1/exports":                    "post",
		"/api/v1/exports/{id}":               "get",
		"/api/v1/openapi.yaml":               "get",
	}
	for path, method := range routes {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("path %s not documented", path)
		}
		if _, ok := ops[method]; !ok {
			t.Fatalf("%s %s not documented", method, path)
		}
	}
}
