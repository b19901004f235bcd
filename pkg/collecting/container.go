package collecting

import (
	"context"

	"go.uber.org/zap"

	"DockerStats/pkg/probing"
	"DockerStats/pkg/utils"
)

// Extractor turns one container's stats snapshot into named metrics.
type Extractor struct {
	Table   PathTable
	EnvVar  string
	Unknown string
	logger  *zap.Logger
}

// NewExtractor builds an extractor. A nil table means DefaultPathTable.
func NewExtractor(table PathTable, envVar, unknown string, logger *zap.Logger) *Extractor {
	if table == nil {
		table = DefaultPathTable
	}
	return &Extractor{
		Table:   table,
		EnvVar:  envVar,
		Unknown: unknown,
		logger:  logger,
	}
}

// Extract names the container, reads one stats document and resolves every
// table path against it. Absent paths and non-numeric leaves are skipped.
func (e *Extractor) Extract(ctx context.Context, client probing.Client, c probing.Container) ([]Result, error) {
	env, err := client.ContainerEnv(ctx, c.ID)
	if err != nil {
		return nil, transportError("inspect", c.ID, err)
	}
	logical := ResolveLogicalName(env, e.EnvVar, e.Unknown)
	runtime := RuntimeName(c.Names, c.ID)

	doc, err := e.snapshot(ctx, client, c.ID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(e.Table))
	for _, m := range e.Table {
		raw, ok := Resolve(m.Path, doc)
		if !ok {
			continue
		}
		value, ok := utils.ToFloat64Ok(raw)
		if !ok {
			e.logger.Debug("skipping non-numeric stats value",
				zap.String("container", runtime),
				zap.String("path", m.Path))
			continue
		}
		results = append(results, Result{
			Name:  MetricName(logical, runtime, m.Suffix),
			Value: value,
			Type:  Gauge,
		})
	}
	return results, nil
}

func (e *Extractor) snapshot(ctx context.Context, client probing.Client, id string) (Document, error) {
	body, err := client.ContainerStats(ctx, id)
	if err != nil {
		return nil, transportError("stats", id, err)
	}
	defer func() {
		if cerr := body.Close(); cerr != nil {
			e.logger.Debug("closing stats stream", zap.String("id", shortID(id)), zap.Error(cerr))
		}
	}()

	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, transportError("decode stats", id, err)
	}
	return doc, nil
}
