package chart_test

import (
	"testing"

	"launchdash/testutil"
)

func TestChartPackageBoundaries(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.TransportImportForbidden, "charts render bytes, handlers serve them")
	testutil.AssertNoDirectImports(t, ".", testutil.ApplicationImportForbidden, "charts only depend on launch results")
}
