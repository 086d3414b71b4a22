package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/voicescreen/component"
)

// StartComponent starts c and stops it when the test ends.
func StartComponent(t testing.TB, c component.Component) {
	t.Helper()
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("starting %s: %v", c.Name(), err)
	}
	t.Cleanup(func() {
		if err := c.Stop(ctx); err != nil {
			t.Errorf("stopping %s: %v", c.Name(), err)
		}
	})
}
