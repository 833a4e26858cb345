// Package telemetry records per generation statistics as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/kpacha/neatbird"
)

// Record summarises one evaluated generation.
type Record struct {
	Optimizer          string  `csv:"optimizer"`
	Generation         int     `csv:"generation"`
	Population         int     `csv:"population"`
	BestFitness        float64 `csv:"best_fitness"`
	MeanFitness        float64 `csv:"mean_fitness"`
	StdDevFitness      float64 `csv:"stddev_fitness"`
	MedianFitness      float64 `csv:"median_fitness"`
	Score              int     `csv:"score"`
	Ticks              int     `csv:"ticks"`
	Collisions         int     `csv:"collisions"`
	OutOfBounds        int     `csv:"out_of_bounds"`
	ControllerFailures int     `csv:"controller_failures"`
	Solved             bool    `csv:"solved"`
}

// NewRecord computes the fitness statistics of a generation.
func NewRecord(optimizer string, generation int, fitness []float64, ep neatbird.EpisodeStats, solved bool) Record {
	r := Record{
		Optimizer:          optimizer,
		Generation:         generation,
		Population:         len(fitness),
		Score:              ep.Score,
		Ticks:              ep.Ticks,
		Collisions:         ep.Collisions,
		OutOfBounds:        ep.OutOfBounds,
		ControllerFailures: ep.ControllerFailures,
		Solved:             solved,
	}
	if len(fitness) == 0 {
		return r
	}

	sorted := make([]float64, len(fitness))
	copy(sorted, fitness)
	sort.Float64s(sorted)

	r.BestFitness = sorted[len(sorted)-1]
	r.MeanFitness, r.StdDevFitness = stat.MeanStdDev(sorted, nil)
	r.MedianFitness = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted) == 1 {
		r.StdDevFitness = 0
	}
	return r
}

// Writer appends records to a CSV stream, writing the header only once.
type Writer struct {
	out           io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewWriter writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// Create opens generations.csv inside dir. Returns nil if dir is empty
// (output disabled); a nil Writer ignores every call.
func Create(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	return &Writer{out: f, closer: f}, nil
}

// Write appends a record.
func (w *Writer) Write(r Record) error {
	if w == nil {
		return nil
	}
	records := []Record{r}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.out); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.out); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	if w == nil || w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
