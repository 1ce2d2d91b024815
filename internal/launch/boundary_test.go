package launch_test

import (
	"testing"

	"launchdash/testutil"
)

func TestLaunchPackageBoundaries(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.TransportImportForbidden, "launch queries are transport agnostic")
	testutil.AssertNoDirectImports(t, ".", testutil.InfraImportForbidden, "datasets load through the blob facade")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.ApplicationImportForbidden, "the launch domain sits below exports and storage")
}
