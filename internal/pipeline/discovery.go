package pipeline

import (
	"context"

	"github.com/go-esd/esd/internal/model"
)

// DrainToFixpoint repeatedly drains queue and runs rsc over the names it
// yields until the queue stays empty, i.e. until no RSC pass discovers a
// name that hasn't already been processed (§4.6). Each name is processed
// at most once per run because DiscoveryQueue's processed-set prevents
// re-enqueueing; this is the explicit work-list the source's recursive
// feedback loop is re-architected into (§9).
func DrainToFixpoint(ctx context.Context, rsc *RscPipeline, queue *model.DiscoveryQueue) []RscResult {
	var all []RscResult
	for {
		names := queue.Drain()
		if len(names) == 0 {
			return all
		}
		all = append(all, rsc.Run(ctx, names)...)
	}
}
