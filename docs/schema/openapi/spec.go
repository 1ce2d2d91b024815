// Package openapi embeds the OpenAPI description of the dashboard HTTP API.
package openapi

import _ "embed"

// DashboardSpec is the OpenAPI document served at /api/v1/openapi.yaml.
//
//go:embed launchdash.yaml
var DashboardSpec []byte

// Spec returns a copy of the embedded document.
func Spec() []byte {
	return append([]byte(nil), DashboardSpec...)
}
