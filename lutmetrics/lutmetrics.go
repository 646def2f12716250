// Package lutmetrics records table build metrics.  Each build is recorded
// both as OpenCensus measures, exported by the Stackdriver exporter, and as
// OpenTelemetry instruments, exported by the Cloud Metrics pipeline.
package lutmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/unit"
)

var tableKey = tag.MustNewKey("table")

type Recorder struct {
	cellCount     *stats.Int64Measure
	cellCountView *view.View

	buildSeconds     *stats.Float64Measure
	buildSecondsView *view.View

	cellCounter   metric.Int64Counter
	buildRecorder metric.Float64ValueRecorder
}

// New creates a Recorder whose OpenTelemetry instruments come from the
// global meter provider.
func New() *Recorder {
	return NewWithMeter(global.Meter("skylut/lutmetrics"))
}

func NewWithMeter(meter metric.Meter) *Recorder {
	r := &Recorder{}

	r.cellCount = stats.Int64("skylut/cells_computed", "Table cells computed", stats.UnitDimensionless)
	r.cellCountView = &view.View{
		Name:        "skylut/cells_computed",
		Description: "Sum of table cells computed",

		TagKeys: []tag.Key{tableKey},

		Measure:     r.cellCount,
		Aggregation: view.Sum(),
	}

	r.buildSeconds = stats.Float64("skylut/build_seconds", "Wall time of one table build", stats.UnitSeconds)
	r.buildSecondsView = &view.View{
		Name:        "skylut/build_seconds",
		Description: "Distribution of table build wall times",

		TagKeys: []tag.Key{tableKey},

		Measure:     r.buildSeconds,
		Aggregation: view.Distribution(1, 10, 60, 600, 3600),
	}

	mm := metric.Must(meter)
	r.cellCounter = mm.NewInt64Counter("skylut/cells_computed", metric.WithDescription("Table cells computed"))
	r.buildRecorder = mm.NewFloat64ValueRecorder("skylut/build_seconds",
		metric.WithDescription("Wall time of one table build"),
		metric.WithUnit(unit.Unit("s")))

	return r
}

func (r *Recorder) RegisterMetrics() error {
	if err := view.Register(r.cellCountView, r.buildSecondsView); err != nil {
		return fmt.Errorf("while registering views: %w", err)
	}
	return nil
}

func (r *Recorder) Unregister() {
	view.Unregister(r.cellCountView, r.buildSecondsView)
}

// RecordBuild records a finished build of the named table.
func (r *Recorder) RecordBuild(ctx context.Context, table string, cells int, elapsed time.Duration) error {
	label := attribute.String("table", table)
	r.cellCounter.Add(ctx, int64(cells), label)
	r.buildRecorder.Record(ctx, elapsed.Seconds(), label)

	return stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Upsert(tableKey, table)),
		stats.WithMeasurements(
			r.cellCount.M(int64(cells)),
			r.buildSeconds.M(elapsed.Seconds()),
		),
	)
}
