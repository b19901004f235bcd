package utils

import "time"

const (
	DefaultPath        = "docker_stats"
	DefaultInterval    = 10 * time.Second
	DefaultCallTimeout = 30 * time.Second
	DefaultNameEnvVar  = "JOB_NAME"
	DefaultUnknownName = "UNKNOWN_NAME"
	DefaultWorkers     = 1
	DefaultFormat      = "text"
	DefaultPort        = 9417
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"

	EnvPrefix     = "DOCKER_STATS_"
	ShortIDLength = 12
)

// OutputFormats lists every accepted value of output.format.
var OutputFormats = []string{"text", "graphite", "jsonl", "csv", "tsv", "parquet"}
