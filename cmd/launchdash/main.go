// Command launchdash serves the SpaceX launch records dashboard and offers
// offline helpers to inspect the dataset and render its charts.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
