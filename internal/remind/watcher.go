package remind

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPollSpec is the default polling schedule for the watcher.
const DefaultPollSpec = "@every 30s"

// Watcher runs reminder passes on a cron schedule until stopped.
type Watcher struct {
	checker *Checker
	spec    string
}

// NewWatcher creates a watcher for the checker. spec accepts the standard
// cron formats, including "@every 30s" descriptors. Empty spec uses
// DefaultPollSpec.
func NewWatcher(c *Checker, spec string) *Watcher {
	if spec == "" {
		spec = DefaultPollSpec
	}
	return &Watcher{checker: c, spec: spec}
}

// Run polls until ctx is canceled. An immediate pass runs before the first
// scheduled one so reminders that came due while the watcher was down fire
// right away. Check errors are reported to stderr and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	pass := func() {
		if _, err := w.checker.Check(ctx, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reminder check failed: %v\n", err)
		}
	}

	pass()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(w.spec, pass); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", w.spec, err)
	}

	scheduler.Start()
	<-ctx.Done()

	// Let an in-flight pass finish before returning.
	<-scheduler.Stop().Done()
	return nil
}
