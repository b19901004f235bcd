package exporting

import (
	"fmt"

	"DockerStats/pkg/utils"
)

// NewSink opens the sink selected by the output config.
func NewSink(cfg utils.OutputConfig, host utils.HostInfo) (Sink, error) {
	switch cfg.Format {
	case "text", "":
		return OpenTextSink(cfg.File)
	case "graphite":
		if cfg.Address == "" {
			return nil, fmt.Errorf("graphite output needs an address")
		}
		return NewGraphiteSink(cfg.Address), nil
	default:
		if _, ok := Get(cfg.Format); !ok {
			return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
		}
		if cfg.File == "" {
			return nil, fmt.Errorf("%s output needs a file", cfg.Format)
		}
		return NewExporter(cfg.File, cfg.Format, host)
	}
}
