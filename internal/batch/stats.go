package batch

import (
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
)

// Stats summarizes a batch run.
type Stats struct {
	Total            int            `json:"total"`
	Valid            int            `json:"valid"`
	Failed           int            `json:"failed"`
	FailuresByKind   map[string]int `json:"failures_by_kind"`
	BySymbology      map[string]int `json:"by_symbology"`
	ByRegion         map[string]int `json:"by_region"`
	WorkerCount      int            `json:"worker_count"`
	TotalDuration    time.Duration  `json:"total_duration"`
	ThroughputPerSec float64        `json:"throughput_per_sec"`
}

// CalculateStats aggregates decode entries.
func CalculateStats(entries []Entry, duration time.Duration, workers int) Stats {
	stats := Stats{
		Total:          len(entries),
		FailuresByKind: make(map[string]int),
		BySymbology:    make(map[string]int),
		ByRegion:       make(map[string]int),
		WorkerCount:    workers,
		TotalDuration:  duration,
	}

	for _, e := range entries {
		if e.Err != nil {
			stats.Failed++
			kind := barcode.KindOf(e.Err)
			if kind == 0 {
				stats.FailuresByKind["other"]++
			} else {
				stats.FailuresByKind[kind.String()]++
			}
			continue
		}
		stats.Valid++
		stats.BySymbology[e.Result.Symbology.String()]++
		stats.ByRegion[e.Result.RegionName]++
	}

	if duration > 0 {
		stats.ThroughputPerSec = float64(len(entries)) / duration.Seconds()
	}
	return stats
}
