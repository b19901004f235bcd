package collecting

import (
	"context"

	"go.uber.org/zap"

	"DockerStats/pkg/probing"
)

const (
	MetricContainersRunning = "containers_running_count"
	MetricContainersStopped = "containers_stopped_count"
	MetricContainersFailed  = "containers_failed_count"
	MetricImages            = "images_count"
	MetricImagesDangling    = "images_dangling_count"
)

// Inventory is the fleet-level view taken at the start of a cycle.
type Inventory struct {
	Running  []probing.Container
	Stopped  int
	Images   int
	Dangling int
}

// Enumerate lists containers and images. Stopped is derived from two
// listings; if they race and the difference goes negative it is reported
// as zero.
func Enumerate(ctx context.Context, client probing.Client, logger *zap.Logger) (*Inventory, error) {
	running, err := client.ListContainers(ctx, false)
	if err != nil {
		return nil, transportError("list running containers", "", err)
	}
	all, err := client.ListContainers(ctx, true)
	if err != nil {
		return nil, transportError("list all containers", "", err)
	}

	stopped := len(all) - len(running)
	if stopped < 0 {
		logger.Warn("container listings disagree, reporting no stopped containers",
			zap.Int("running", len(running)),
			zap.Int("all", len(all)))
		stopped = 0
	}

	images, err := client.ListImageIDs(ctx, false)
	if err != nil {
		return nil, transportError("list images", "", err)
	}
	dangling, err := client.ListImageIDs(ctx, true)
	if err != nil {
		return nil, transportError("list dangling images", "", err)
	}

	return &Inventory{
		Running:  running,
		Stopped:  stopped,
		Images:   countDistinct(images),
		Dangling: countDistinct(dangling),
	}, nil
}

// AddTo records the four inventory gauges.
func (inv *Inventory) AddTo(b *Batch) {
	b.Add(MetricContainersRunning, float64(len(inv.Running)), Gauge)
	b.Add(MetricContainersStopped, float64(inv.Stopped), Gauge)
	b.Add(MetricImages, float64(inv.Images), Gauge)
	b.Add(MetricImagesDangling, float64(inv.Dangling), Gauge)
}

func countDistinct(ids []string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return len(set)
}
