package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"skylut/irradiancemap"
	"skylut/lutbuild"
	"skylut/lutcache"
	"skylut/lutexport"
	"skylut/lutmetrics"
	"skylut/lutstore"
	"skylut/parallel"
	"skylut/planet"
	"skylut/progress"
	"skylut/scattering"
	"skylut/scatteringmap"
	"skylut/texture"
	"skylut/transmittance"
	"skylut/transmittancemap"
	"skylut/vmath/vec3"

	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	googleopt "google.golang.org/api/option"
)

var cmdBuild = &cobra.Command{
	Use:   "build",
	Short: "Compute the transmittance, scattering, and irradiance tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd)
	},
}

var (
	preset string

	planetRadius           float64
	atmosphereHeight       float64
	rayleighScatteringCoef []float64
	rayleighExtinctionCoef []float64
	mieScatteringCoef      []float64
	mieExtinctionCoef      []float64
	rayleighScaleHeight    float64
	mieScaleHeight         float64
	mieAsymmetry           float64

	transmittanceResolution int
	transmittanceSamples    int

	scatteringViewResolution       int
	scatteringSunResolution        int
	scatteringTransmittanceSamples int
	scatteringSamples              int
	scatteringViewMapping          string
	scatteringSunMapping           string

	irradianceResolution           int
	irradianceHemisphereSamples    int
	irradianceTransmittanceSamples int
	irradianceScatteringSamples    int
	irradianceSeed                 int64

	transmittanceMultiplier float64
	scatteringMultiplier    float64
	irradianceMultiplier    float64

	workers   int
	outDir    string
	gcsBucket string
	gcsPrefix string
	cacheDir  string

	cpuprofile string
	memprofile string
)

func init() {
	earth := planet.Earth()

	f := cmdBuild.Flags()
	f.StringVar(&preset, "preset", "", "Start from a named planet instead of Earth.  Known presets: mars.  Explicit planet flags still win.")

	f.Float64Var(&planetRadius, "planet-radius", earth.PlanetRadius(), "Planet radius")
	f.Float64Var(&atmosphereHeight, "atmosphere-height", earth.AtmosphereHeight(), "Atmosphere shell thickness")
	f.Float64SliceVar(&rayleighScatteringCoef, "rayleigh-scattering", vecFlag(earth.RayleighScatteringCoef()), "Rayleigh scattering coefficient (r,g,b)")
	f.Float64SliceVar(&rayleighExtinctionCoef, "rayleigh-extinction", vecFlag(earth.RayleighExtinctionCoef()), "Rayleigh extinction coefficient (r,g,b)")
	f.Float64SliceVar(&mieScatteringCoef, "mie-scattering", vecFlag(earth.MieScatteringCoef()), "Mie scattering coefficient (r,g,b)")
	f.Float64SliceVar(&mieExtinctionCoef, "mie-extinction", vecFlag(earth.MieExtinctionCoef()), "Mie extinction coefficient (r,g,b)")
	f.Float64Var(&rayleighScaleHeight, "rayleigh-scale-height", earth.RayleighScaleHeight(), "Rayleigh density scale height")
	f.Float64Var(&mieScaleHeight, "mie-scale-height", earth.MieScaleHeight(), "Mie density scale height")
	f.Float64Var(&mieAsymmetry, "mie-asymmetry", earth.MieAsymmetry(), "Mie phase asymmetry g, in (-1, 1)")

	f.IntVar(&transmittanceResolution, "transmittance-resolution", 512, "Transmittance table cells")
	f.IntVar(&transmittanceSamples, "transmittance-samples", 512, "Transmittance integration samples per cell")

	f.IntVar(&scatteringViewResolution, "scattering-view-resolution", 512, "Scattering table cells along the view zenith axis")
	f.IntVar(&scatteringSunResolution, "scattering-sun-resolution", 512, "Scattering table cells along the sun zenith axis")
	f.IntVar(&scatteringTransmittanceSamples, "scattering-transmittance-samples", 256, "Transmittance integration samples inside the scattering integral")
	f.IntVar(&scatteringSamples, "scattering-samples", 256, "Scattering integration samples per cell")
	f.StringVar(&scatteringViewMapping, "scattering-view-mapping", "linear", "View zenith axis mapping: linear or cubic")
	f.StringVar(&scatteringSunMapping, "scattering-sun-mapping", "linear", "Sun zenith axis mapping: linear or cubic")

	f.IntVar(&irradianceResolution, "irradiance-resolution", 512, "Irradiance table cells")
	f.IntVar(&irradianceHemisphereSamples, "irradiance-hemisphere-samples", 128, "Hemisphere directions per irradiance cell")
	f.IntVar(&irradianceTransmittanceSamples, "irradiance-transmittance-samples", 128, "Transmittance integration samples inside the irradiance integral")
	f.IntVar(&irradianceScatteringSamples, "irradiance-scattering-samples", 128, "Scattering integration samples inside the irradiance integral")
	f.Int64Var(&irradianceSeed, "irradiance-seed", 1, "Seed for the hemisphere directions")

	f.Float64Var(&transmittanceMultiplier, "transmittance-preview-multiplier", 1, "Brightness multiplier for the transmittance previews")
	f.Float64Var(&scatteringMultiplier, "scattering-preview-multiplier", 10, "Brightness multiplier for the scattering previews")
	f.Float64Var(&irradianceMultiplier, "irradiance-preview-multiplier", 10, "Brightness multiplier for the irradiance previews")

	f.IntVar(&workers, "workers", 0, "Concurrent cell evaluations.  0 means one per CPU, 1 runs serially.")
	f.StringVar(&outDir, "out-dir", ".", "Directory for output files.  Empty disables local output.")
	f.StringVar(&gcsBucket, "gcs-bucket", "", "Also upload output files to this GCS bucket")
	f.StringVar(&gcsPrefix, "gcs-prefix", "skylut", "Object name prefix inside --gcs-bucket")
	f.StringVar(&cacheDir, "cache-dir", "", "Badger directory for caching finished tables.  Empty disables caching.")

	f.StringVar(&cpuprofile, "cpu-profile", "", "write cpu profile to `file`")
	f.StringVar(&memprofile, "mem-profile", "", "write memory profile to `file`")
}

func vecFlag(v vec3.T) []float64 {
	return []float64{v[0], v[1], v[2]}
}

func vecFromFlag(name string, s []float64) (vec3.T, error) {
	if len(s) != 3 {
		return vec3.T{}, fmt.Errorf("--%s needs exactly 3 values, got %d", name, len(s))
	}
	return vec3.T{s[0], s[1], s[2]}, nil
}

// applyPreset overwrites planet flags the user did not set explicitly.
func applyPreset(cmd *cobra.Command) error {
	var values map[string]string
	switch preset {
	case "":
		return nil
	case "mars":
		values = map[string]string{
			"planet-radius":         "3400",
			"atmosphere-height":     "50",
			"rayleigh-scale-height": "11",
			"mie-scale-height":      "2",
			"rayleigh-scattering":   "0.0331,0.0135,0.0058",
			"rayleigh-extinction":   "0.0331,0.0135,0.0058",
		}
	default:
		return fmt.Errorf("unknown preset %q", preset)
	}

	for name, value := range values {
		if cmd.Flags().Changed(name) {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("while applying preset %q to --%s: %w", preset, name, err)
		}
	}
	return nil
}

func planetFromFlags() (*planet.Properties, error) {
	opts := []planet.PropertiesOpt{
		planet.WithPlanetRadius(planetRadius),
		planet.WithAtmosphereHeight(atmosphereHeight),
		planet.WithRayleighScaleHeight(rayleighScaleHeight),
		planet.WithMieScaleHeight(mieScaleHeight),
		planet.WithMieAsymmetry(mieAsymmetry),
	}

	coefs := []struct {
		name string
		val  []float64
		opt  func(vec3.T) planet.PropertiesOpt
	}{
		{"rayleigh-scattering", rayleighScatteringCoef, planet.WithRayleighScatteringCoef},
		{"rayleigh-extinction", rayleighExtinctionCoef, planet.WithRayleighExtinctionCoef},
		{"mie-scattering", mieScatteringCoef, planet.WithMieScatteringCoef},
		{"mie-extinction", mieExtinctionCoef, planet.WithMieExtinctionCoef},
	}
	for _, c := range coefs {
		v, err := vecFromFlag(c.name, c.val)
		if err != nil {
			return nil, err
		}
		opts = append(opts, c.opt(v))
	}

	return planet.New(opts...)
}

func runnerFromFlags() parallel.Runner {
	if workers == 1 {
		return parallel.Serial{}
	}
	return parallel.Pool{Workers: workers}
}

func sinkFromFlags(ctx context.Context) (lutstore.Sink, error) {
	sinks := lutstore.Multi{}
	if outDir != "" {
		sinks = append(sinks, lutstore.DirSink{Dir: outDir})
	}
	if gcsBucket != "" {
		gcs, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return nil, fmt.Errorf("while creating GCS client: %w", err)
		}
		sinks = append(sinks, lutstore.NewGCSSink(gcs, gcsBucket, gcsPrefix))
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("no output configured; set --out-dir or --gcs-bucket")
	}
	return sinks, nil
}

func runBuild(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)
	go func() {
		select {
		case <-signalCh:
			glog.Warningf("Interrupted; abandoning remaining cells")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := applyPreset(cmd); err != nil {
		return err
	}

	stopMonitoring, err := setupMonitoring(ctx)
	defer stopMonitoring()
	if err != nil {
		return err
	}

	pp, err := planetFromFlags()
	if err != nil {
		return fmt.Errorf("bad planet parameters: %w", err)
	}
	glog.Infof("planet: %s", pp.Fingerprint())

	sink, err := sinkFromFlags(ctx)
	if err != nil {
		return err
	}

	b := &builder{
		runner:   runnerFromFlags(),
		sink:     sink,
		metrics:  lutmetrics.New(),
		manifest: &lutexport.Manifest{Planet: lutexport.PlanetFields(pp)},
	}
	if err := b.metrics.RegisterMetrics(); err != nil {
		return err
	}
	defer b.metrics.Unregister()

	if cacheDir != "" {
		b.cache, err = lutcache.Open(cacheDir)
		if err != nil {
			return fmt.Errorf("while opening cache: %w", err)
		}
		defer b.cache.Close()
	}

	if err := b.transmittance(ctx, pp); err != nil {
		return err
	}
	if err := b.scattering(ctx, pp); err != nil {
		return err
	}
	if err := b.irradiance(ctx, pp); err != nil {
		return err
	}

	data, err := b.manifest.Marshal()
	if err != nil {
		return err
	}
	if err := b.sink.Put(ctx, "manifest.json", "application/json", data); err != nil {
		return fmt.Errorf("while writing manifest: %w", err)
	}

	if memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}

	return nil
}

// builder carries what every table build shares.
type builder struct {
	runner   parallel.Runner
	sink     lutstore.Sink
	cache    *lutcache.Cache
	metrics  *lutmetrics.Recorder
	manifest *lutexport.Manifest
}

func (b *builder) opts(name string) []lutbuild.Opt {
	return []lutbuild.Opt{
		lutbuild.WithRunner(b.runner),
		lutbuild.WithProgress(progress.New(name).Update),
	}
}

// grid adapts a builder's typed Texture accessor.
func grid[G texture.Grid[vec3.T]](tex func() (G, error)) func() (texture.Grid[vec3.T], error) {
	return func() (texture.Grid[vec3.T], error) {
		g, err := tex()
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// compute returns the table for key from the cache, or runs build and
// caches what it produced.
func (b *builder) compute(
	ctx context.Context,
	name string,
	key []byte,
	cells int,
	build func(ctx context.Context) error,
	tex func() (texture.Grid[vec3.T], error),
) (texture.Grid[vec3.T], error) {
	if b.cache != nil {
		im, ok, err := b.cache.Get(key)
		if err != nil {
			glog.Warningf("Ignoring cache read failure for %s: %v", name, err)
		} else if ok {
			glog.Infof("%s: using cached table", name)
			return im, nil
		}
	}

	start := time.Now()
	if err := build(ctx); err != nil {
		return nil, fmt.Errorf("while building %s table: %w", name, err)
	}
	elapsed := time.Since(start)
	glog.Infof("%s: %d cells in %v", name, cells, elapsed.Round(time.Millisecond))

	if err := b.metrics.RecordBuild(ctx, name, cells, elapsed); err != nil {
		glog.Warningf("Failed to record metrics for %s: %v", name, err)
	}

	g, err := tex()
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		if err := b.cache.Put(key, g); err != nil {
			glog.Warningf("Failed to cache %s table: %v", name, err)
		}
	}
	return g, nil
}

// publish encodes g in every output format and hands the files to the sink.
func (b *builder) publish(ctx context.Context, name string, g texture.Grid[vec3.T], mult float64, entry lutexport.TableEntry) error {
	tracer := otel.Tracer("skylut/cmd/skylut")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Publish "+name)
	defer span.End()

	span.SetAttributes(attribute.String("table", name))

	files := []struct {
		name        string
		contentType string
		write       func(buf *bytes.Buffer) error
	}{
		{name + ".bin", "application/octet-stream", func(buf *bytes.Buffer) error { return lutexport.WriteBinary16(buf, g) }},
		{name + ".ppm", "image/x-portable-pixmap", func(buf *bytes.Buffer) error { return lutexport.WritePPM(buf, g, mult) }},
		{name + ".png", "image/png", func(buf *bytes.Buffer) error { return lutexport.WritePNG(buf, g, mult) }},
	}

	for _, f := range files {
		buf := &bytes.Buffer{}
		if err := f.write(buf); err != nil {
			err = fmt.Errorf("while encoding %s: %w", f.name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if err := b.sink.Put(ctx, f.name, f.contentType, buf.Bytes()); err != nil {
			err = fmt.Errorf("while storing %s: %w", f.name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		entry.Files = append(entry.Files, f.name)
	}

	entry.Name = name
	entry.Width, entry.Height, entry.Depth = g.Dims()
	b.manifest.Tables = append(b.manifest.Tables, entry)

	span.SetStatus(codes.Ok, "")
	return nil
}

func (b *builder) transmittance(ctx context.Context, pp *planet.Properties) error {
	params := transmittance.Params{SampleCount: transmittanceSamples}

	m, err := transmittancemap.New(transmittanceResolution, pp, params, b.opts("transmittance")...)
	if err != nil {
		return fmt.Errorf("bad transmittance configuration: %w", err)
	}

	key := lutcache.Key("transmittance", pp.Fingerprint(), transmittanceResolution, transmittanceSamples)
	g, err := b.compute(ctx, "transmittance", key, transmittanceResolution, m.Build, grid(m.Texture))
	if err != nil {
		return err
	}

	return b.publish(ctx, "transmittance", g, transmittanceMultiplier, lutexport.TableEntry{
		Axes: []string{"u: view zenith cosine = u, observer at 1% of the atmosphere height"},
		Params: map[string]interface{}{
			"transmittanceSamples": transmittanceSamples,
		},
	})
}

func (b *builder) scattering(ctx context.Context, pp *planet.Properties) error {
	viewMapping, err := scatteringmap.ParseMapping(scatteringViewMapping)
	if err != nil {
		return err
	}
	sunMapping, err := scatteringmap.ParseMapping(scatteringSunMapping)
	if err != nil {
		return err
	}

	tParams := transmittance.Params{SampleCount: scatteringTransmittanceSamples}
	sParams := scattering.Params{SampleCount: scatteringSamples}

	m, err := scatteringmap.New(
		scatteringViewResolution, scatteringSunResolution,
		pp, tParams, sParams,
		viewMapping, sunMapping,
		b.opts("scattering")...,
	)
	if err != nil {
		return fmt.Errorf("bad scattering configuration: %w", err)
	}

	key := lutcache.Key("scattering", pp.Fingerprint(),
		scatteringViewResolution, scatteringSunResolution,
		scatteringTransmittanceSamples, scatteringSamples,
		viewMapping, sunMapping)
	g, err := b.compute(ctx, "scattering", key, scatteringViewResolution*scatteringSunResolution, m.Build, grid(m.Texture))
	if err != nil {
		return err
	}

	return b.publish(ctx, "scattering", g, scatteringMultiplier, lutexport.TableEntry{
		Axes: []string{viewMapping.ViewAxis(), sunMapping.SunAxis()},
		Params: map[string]interface{}{
			"transmittanceSamples": scatteringTransmittanceSamples,
			"scatteringSamples":    scatteringSamples,
			"viewMapping":          viewMapping.String(),
			"sunMapping":           sunMapping.String(),
		},
	})
}

func (b *builder) irradiance(ctx context.Context, pp *planet.Properties) error {
	tParams := transmittance.Params{SampleCount: irradianceTransmittanceSamples}
	sParams := scattering.Params{SampleCount: irradianceScatteringSamples}

	m, err := irradiancemap.New(
		irradianceResolution, irradianceHemisphereSamples,
		pp, tParams, sParams,
		rand.New(rand.NewSource(irradianceSeed)),
		b.opts("irradiance")...,
	)
	if err != nil {
		return fmt.Errorf("bad irradiance configuration: %w", err)
	}

	key := lutcache.Key("irradiance", pp.Fingerprint(),
		irradianceResolution, irradianceHemisphereSamples,
		irradianceTransmittanceSamples, irradianceScatteringSamples,
		irradianceSeed)
	g, err := b.compute(ctx, "irradiance", key, irradianceResolution, m.Build, grid(m.Texture))
	if err != nil {
		return err
	}

	return b.publish(ctx, "irradiance", g, irradianceMultiplier, lutexport.TableEntry{
		Axes: []string{"u: sun zenith cosine = 1 - 2u, observer at 1% of the atmosphere height"},
		Params: map[string]interface{}{
			"hemisphereSamples":    irradianceHemisphereSamples,
			"transmittanceSamples": irradianceTransmittanceSamples,
			"scatteringSamples":    irradianceScatteringSamples,
			"seed":                 irradianceSeed,
		},
	})
}
