// Package rfprop is the entry point for RF propagation data: it loads
// AREPS file sets into a profile manager, owns the radar description and
// POD thresholds they share, and answers point queries for every derived
// quantity.
package rfprop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/rfprop-engine/areps"
	"github.com/signalsfoundry/rfprop-engine/internal/logging"
	"github.com/signalsfoundry/rfprop-engine/internal/observability"
	"github.com/signalsfoundry/rfprop-engine/profile"
)

const tracerName = "github.com/signalsfoundry/rfprop-engine/rfprop"

const (
	// DefaultTransparency is the initial display transparency in percent;
	// 100 is fully transparent, 0 is opaque.
	DefaultTransparency = 60
	// DefaultHistoryDeg is the initial bearing history arc in degrees,
	// counterclockwise from the current bearing.
	DefaultHistoryDeg = 30
)

const degToRad = math.Pi / 180.0

// ErrRadarParamsLocked is returned when the radar description would
// change under data that was derived from the previous one.
var ErrRadarParamsLocked = errors.New("rfprop: radar parameters are locked while profiles are loaded or displayed")

// LossSource supplies loss values for points the loaded tables cannot
// answer, such as an external propagation model. Optional.
type LossSource interface {
	Loss(azimRad, gndRngMeters, hgtMeters float64) (float64, bool)
}

// Facade ties one beam's propagation data together: loaded file sets,
// radar parameters, POD thresholds, color maps, and the profile manager
// that holds the per-bearing data.
type Facade struct {
	log     logging.Logger
	metrics *observability.EngineCollector

	manager       *profile.Manager
	colorMaps     map[profile.ThresholdType]map[float32]profile.Color
	defaultColors map[float32]profile.Color

	podLossThresholds profile.PODVector
	params            profile.RadarParameters
	paramsSet         bool

	antennaHeightMeters float64
	filesets            map[float64][]string
	profiles            []*profile.Profile
	lossSource          LossSource
}

// NewFacade returns a facade with default colors, POD thresholds,
// transparency, and history, and the display off. log and metrics may
// be nil.
func NewFacade(log logging.Logger, metrics *observability.EngineCollector) *Facade {
	if log == nil {
		log = logging.Noop()
	}
	f := &Facade{
		log:               log,
		metrics:           metrics,
		manager:           profile.NewManager(),
		defaultColors:     profile.DefaultColors(),
		podLossThresholds: defaultPODThresholds(),
		filesets:          make(map[float64][]string),
	}
	f.initializeDefaultColors()
	f.SetThresholdType(profile.ThresholdPOD)
	f.SetTransparency(DefaultTransparency)
	f.SetHistory(DefaultHistoryDeg)
	f.SetDisplay(false)
	return f
}

func (f *Facade) initializeDefaultColors() {
	complex := profile.DefaultComplexColors()
	f.colorMaps = map[profile.ThresholdType]map[float32]profile.Color{
		profile.ThresholdLoss:        profile.DefaultLossColors(),
		profile.ThresholdSNR:         complex,
		profile.ThresholdCNR:         complex,
		profile.ThresholdOneWayPower: complex,
		profile.ThresholdFactor:      complex,
	}
}

// Manager exposes the underlying profile manager so callers can drive
// time updates and geometry rebuilds.
func (f *Facade) Manager() *profile.Manager { return f.manager }

// Valid reports whether the facade has radar parameters bound.
func (f *Facade) Valid() bool { return f.paramsSet }

// SetLossSource installs a fallback consulted when a Loss query cannot
// be answered from loaded data.
func (f *Facade) SetLossSource(s LossSource) { f.lossSource = s }

// SetRadarParams binds the radar description the derived power providers
// compute from. Once profiles exist or the display is on, the
// description is locked; re-binding equal values is a no-op and
// different values return ErrRadarParamsLocked.
func (f *Facade) SetRadarParams(params profile.RadarParameters) error {
	if f.manager.Display() || len(f.filesets) > 0 || len(f.profiles) > 0 {
		if f.paramsSet && params.Equal(f.params) {
			return nil
		}
		return ErrRadarParamsLocked
	}
	params.Finalize()
	f.params = params
	f.paramsSet = true
	return nil
}

// RadarParams returns the bound radar description. The pointer is shared
// with the derived providers.
func (f *Facade) RadarParams() *profile.RadarParameters { return &f.params }

// SetPODLossThreshold replaces the POD thresholds. thresholds must hold
// one positive decreasing loss value in dB per percentile; they are
// stored sign-inverted.
func (f *Facade) SetPODLossThreshold(thresholds []float64) error {
	if len(thresholds) != profile.PODVectorSize {
		return fmt.Errorf("rfprop: POD threshold vector has %d entries, want %d", len(thresholds), profile.PODVectorSize)
	}
	v := make(profile.PODVector, len(thresholds))
	for i, t := range thresholds {
		if t < 0 {
			return fmt.Errorf("rfprop: POD threshold %d is negative", i)
		}
		v[i] = -t
	}
	f.podLossThresholds = v
	return nil
}

// PODLossThreshold returns the sign-inverted POD thresholds.
func (f *Facade) PODLossThreshold() profile.PODVector { return f.podLossThresholds }

// LoadArepsFiles ingests one AREPS file set recorded at the given time.
// Files are loaded serially; the first file binds the radar parameters,
// POD thresholds, grid extents, and antenna height for the whole set. A
// failure on any file discards the set's profile map and aborts. On
// success the display is switched on.
func (f *Facade) LoadArepsFiles(ctx context.Context, timeSec float64, filenames ...string) error {
	ctx, log := logging.WithRequestLogger(ctx, f.log)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "rfprop.LoadArepsFiles",
		trace.WithAttributes(
			attribute.Float64("rfprop.time_sec", timeSec),
			attribute.Int("rfprop.files", len(filenames)),
		))
	defer span.End()

	f.manager.AddProfileMap(timeSec)
	f.manager.Update(timeSec)

	loader := areps.NewLoader(f, log)
	for i, name := range filenames {
		start := time.Now()
		beam, err := loader.LoadFile(ctx, name, i == 0)
		f.metrics.ObserveFileLoad(time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			f.manager.RemoveProfileMap(timeSec)
			return err
		}
		if len(f.filesets) == 0 {
			f.setAntennaHeight(loader.AntennaHeight())
		}
		f.manager.SetDisplayThickness(beam.MaxHeight)
		prof := profile.NewProfile(beam.BearingRad, beam.HalfBeamWidthRad, beam.Providers, f.manager.Context())
		f.manager.AddProfile(prof)
		f.profiles = append(f.profiles, prof)
	}

	f.filesets[timeSec] = append(f.filesets[timeSec], filenames...)
	f.metrics.SetProfilesLoaded(len(f.profiles))
	f.SetDisplay(true)
	log.Info(ctx, "loaded AREPS file set",
		logging.Float64("time_sec", timeSec),
		logging.Int("files", len(filenames)),
		logging.Int("profiles", len(f.profiles)))
	return nil
}

// RebuildDirtyProfiles regenerates the mesh of every visible profile
// whose parameters changed, returning how many were rebuilt. Meant to be
// called once per displayed frame.
func (f *Facade) RebuildDirtyProfiles(ctx context.Context) int {
	_, span := otel.Tracer(tracerName).Start(ctx, "rfprop.RebuildDirtyProfiles")
	defer span.End()

	rebuilt := 0
	for _, p := range f.profiles {
		if p.Visible() && p.Dirty() {
			p.RebuildIfDirty()
			f.metrics.IncProfileRebuilds()
			rebuilt++
		}
	}
	span.SetAttributes(attribute.Int("rfprop.profiles_rebuilt", rebuilt))
	return rebuilt
}

// InputFiles reports the filenames of the file set recorded at the given
// time.
func (f *Facade) InputFiles(timeSec float64) ([]string, bool) {
	files, ok := f.filesets[timeSec]
	return files, ok
}

// ClearCache drops all loaded data and recreates an empty profile
// manager with the default display settings.
func (f *Facade) ClearCache() {
	f.SetDisplay(false)
	f.filesets = make(map[float64][]string)
	f.profiles = nil
	f.manager = profile.NewManager()
	f.SetThresholdType(profile.ThresholdPOD)
	f.SetTransparency(DefaultTransparency)
	f.SetHistory(DefaultHistoryDeg)
	f.metrics.SetProfilesLoaded(0)
}

func (f *Facade) setAntennaHeight(heightMeters float64) {
	f.antennaHeightMeters = heightMeters
	f.SetPosition(f.manager.RefLat(), f.manager.RefLon())
}

// AntennaHeight reports the antenna height above ground in meters, taken
// from the first loaded file set.
func (f *Facade) AntennaHeight() float64 { return f.antennaHeightMeters }

// SetPosition moves the beam origin. The reference altitude tracks the
// antenna height.
func (f *Facade) SetPosition(latRad, lonRad float64) {
	f.manager.SetRefCoord(latRad, lonRad, f.antennaHeightMeters)
}

// MinHeight reports the bottom of the data grid of the first loaded
// profile, or 0 when nothing is loaded.
func (f *Facade) MinHeight() float64 {
	if len(f.profiles) == 0 {
		return 0
	}
	return f.profiles[0].DataProvider().MinHeight()
}

// MaxHeight reports the top of the data grid of the first loaded
// profile, or 0 when nothing is loaded.
func (f *Facade) MaxHeight() float64 {
	if len(f.profiles) == 0 {
		return 0
	}
	return f.profiles[0].DataProvider().MaxHeight()
}

// NumProfiles reports how many profiles have been loaded.
func (f *Facade) NumProfiles() int { return len(f.profiles) }

// ProfileAt returns the i'th loaded profile, or nil.
func (f *Facade) ProfileAt(i int) *profile.Profile {
	if i < 0 || i >= len(f.profiles) {
		return nil
	}
	return f.profiles[i]
}

// ProfileByBearing returns the profile whose beam covers the given
// bearing, or nil.
func (f *Facade) ProfileByBearing(azimRad float64) *profile.Profile {
	return f.manager.GetProfileByBearing(azimRad)
}

// Display plumbing.

func (f *Facade) SetDisplay(on bool) { f.manager.SetDisplay(on) }
func (f *Facade) Display() bool      { return f.manager.Display() }

func (f *Facade) SetAGL(agl bool) { f.manager.SetAGL(agl) }
func (f *Facade) AGL() bool       { return f.manager.AGL() }

func (f *Facade) SetDrawMode(mode profile.DrawMode) { f.manager.SetMode(mode) }
func (f *Facade) DrawMode() profile.DrawMode        { return f.manager.Mode() }

func (f *Facade) SetHeight(heightMeters float64) { f.manager.SetHeight(heightMeters) }
func (f *Facade) Height() float64                { return f.manager.Height() }

func (f *Facade) SetThickness(thicknessMeters float64) { f.manager.SetDisplayThickness(thicknessMeters) }
func (f *Facade) Thickness() float64                   { return f.manager.DisplayThickness() }

func (f *Facade) SetThicknessBySlots(numSlots int) error {
	return f.manager.SetThicknessBySlots(numSlots)
}

func (f *Facade) SetBearing(bearingRad float64) { f.manager.SetBearing(bearingRad) }
func (f *Facade) Bearing() float64              { return f.manager.Bearing() }

func (f *Facade) SetElevation(elevRad float64) { f.manager.SetElevAngle(elevRad) }

// SetHistory sets the bearing history arc in whole degrees.
func (f *Facade) SetHistory(deg int) {
	f.manager.SetHistory(float64(deg) * degToRad)
}

// History reports the bearing history arc rounded to whole degrees.
func (f *Facade) History() int {
	return int(math.Round(f.manager.History() / degToRad))
}

// SetTransparency sets display transparency as a percentage; 100 is
// fully transparent.
func (f *Facade) SetTransparency(pct int) {
	f.manager.SetAlpha(1.0 - float32(pct)*0.01)
}

// Transparency reports display transparency as a percentage.
func (f *Facade) Transparency() int {
	return int(0.5 + 100.0*(1.0-f.manager.Alpha()))
}

// SetThresholdType switches the displayed quantity and applies its color
// map.
func (f *Facade) SetThresholdType(t profile.ThresholdType) {
	f.manager.SetThresholdType(t)
	f.setGradientByThresholdType(t)
}

func (f *Facade) ThresholdType() profile.ThresholdType { return f.manager.ThresholdType() }

// SetColorMap replaces the color map for a threshold type. CNR, SNR,
// PPF, and one-way power always share one map.
func (f *Facade) SetColorMap(t profile.ThresholdType, colors map[float32]profile.Color) {
	current := f.manager.ThresholdType()
	var refresh bool
	switch t {
	case profile.ThresholdCNR, profile.ThresholdSNR, profile.ThresholdFactor, profile.ThresholdOneWayPower:
		for _, shared := range []profile.ThresholdType{
			profile.ThresholdCNR, profile.ThresholdSNR, profile.ThresholdFactor, profile.ThresholdOneWayPower,
		} {
			f.colorMaps[shared] = colors
			refresh = refresh || current == shared
		}
	default:
		f.colorMaps[t] = colors
		refresh = current == t
	}
	if refresh {
		f.manager.SetColorProvider(profile.NewGradientColorProvider(colors, false))
	}
}

// ColorMap returns the color map bound to a threshold type, falling back
// to the default map.
func (f *Facade) ColorMap(t profile.ThresholdType) map[float32]profile.Color {
	if m, ok := f.colorMaps[t]; ok {
		return m
	}
	return f.defaultColors
}

func (f *Facade) setGradientByThresholdType(t profile.ThresholdType) {
	f.manager.SetColorProvider(profile.NewGradientColorProvider(f.ColorMap(t), false))
}

// Queries. All report a sentinel and log a warning rather than failing
// when the bearing, quantity, or point is not covered by loaded data.

// POD returns the probability of detection percentile at a point, or 0.
func (f *Facade) POD(ctx context.Context, azimRad, gndRngMeters, hgtMeters float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("pod", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdPOD, "POD")
	if p != nil && f.inBounds(ctx, p, "POD", gndRngMeters, hgtMeters) {
		v, _ := p.InterpolateValue(hgtMeters, gndRngMeters)
		f.metrics.IncQuery("pod", true)
		return v
	}
	f.metrics.IncQuery("pod", false)
	return 0.0
}

// Loss returns the propagation loss in dB at a point, or the small-dB
// sentinel. When loaded data cannot answer, an installed LossSource is
// consulted before giving up.
func (f *Facade) Loss(ctx context.Context, azimRad, gndRngMeters, hgtMeters float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("loss", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdLoss, "Loss")
	if p != nil && f.inBounds(ctx, p, "Loss", gndRngMeters, hgtMeters) {
		v, _ := p.InterpolateValue(hgtMeters, gndRngMeters)
		f.metrics.IncQuery("loss", true)
		return clampSmallDB(v)
	}
	if f.lossSource != nil {
		if v, ok := f.lossSource.Loss(azimRad, gndRngMeters, hgtMeters); ok {
			f.metrics.IncQuery("loss", true)
			return clampSmallDB(v)
		}
	}
	f.metrics.IncQuery("loss", false)
	return profile.SmallDBVal
}

// PPF returns the pattern propagation factor in dB at a point, or the
// small-dB sentinel.
func (f *Facade) PPF(ctx context.Context, azimRad, gndRngMeters, hgtMeters float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("ppf", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdFactor, "PPF")
	if p != nil && f.inBounds(ctx, p, "PPF", gndRngMeters, hgtMeters) {
		v, _ := p.InterpolateValue(hgtMeters, gndRngMeters)
		f.metrics.IncQuery("ppf", true)
		return clampSmallDB(v)
	}
	f.metrics.IncQuery("ppf", false)
	return profile.SmallDBVal
}

// CNR returns the clutter-to-noise ratio in dB at a ground range, or the
// small-dB sentinel. CNR has no height axis.
func (f *Facade) CNR(ctx context.Context, azimRad, gndRngMeters float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("cnr", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdCNR, "CNR")
	if p != nil {
		if gndRngMeters < p.MinRange() || gndRngMeters > p.MaxRange() {
			f.logFor(ctx).Warn(ctx, "CNR request outside of profile range limits",
				logging.Float64("bearing_rad", azimRad), logging.Float64("range_m", gndRngMeters))
		} else {
			v, _ := p.InterpolateValue(0.0, gndRngMeters)
			f.metrics.IncQuery("cnr", true)
			return v
		}
	}
	f.metrics.IncQuery("cnr", false)
	return profile.SmallDBVal
}

// SNR returns the signal-to-noise ratio in dB for a target at a point,
// or the small-dB sentinel.
func (f *Facade) SNR(ctx context.Context, azimRad, slantRngMeters, hgtMeters, xmtGaindB, rcvGaindB, rcsSqm, gndRngMeters float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("snr", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdSNR, "SNR")
	if p != nil && f.inBounds(ctx, p, "SNR", gndRngMeters, hgtMeters) {
		if snr, ok := p.(*profile.SNRProvider); ok {
			f.metrics.IncQuery("snr", true)
			return snr.SNR(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB, rcsSqm)
		}
	}
	f.metrics.IncQuery("snr", false)
	return profile.SmallDBVal
}

// OneWayPower returns the one-way received power in dB at a point, or
// the small-dB sentinel.
func (f *Facade) OneWayPower(ctx context.Context, azimRad, slantRngMeters, hgtMeters, xmtGaindB, gndRngMeters, rcvGaindB float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("one_way_power", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdOneWayPower, "one-way power")
	if p != nil && f.inBounds(ctx, p, "one-way power", gndRngMeters, hgtMeters) {
		if owp, ok := p.(*profile.OneWayPowerProvider); ok {
			f.metrics.IncQuery("one_way_power", true)
			return owp.OneWayPower(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB)
		}
	}
	f.metrics.IncQuery("one_way_power", false)
	return profile.SmallDBVal
}

// ReceivedPower returns the two-way received power in dB for a target at
// a point, or the small-dB sentinel.
func (f *Facade) ReceivedPower(ctx context.Context, azimRad, slantRngMeters, hgtMeters, xmtGaindB, rcvGaindB, rcsSqm, gndRngMeters float64) float64 {
	defer func(start time.Time) { f.metrics.ObserveQuery("received_power", time.Since(start)) }(time.Now())
	p := f.findProvider(ctx, azimRad, profile.ThresholdReceivedPower, "received power")
	if p != nil && f.inBounds(ctx, p, "received power", gndRngMeters, hgtMeters) {
		if twp, ok := p.(*profile.TwoWayPowerProvider); ok {
			f.metrics.IncQuery("received_power", true)
			return twp.TwoWayPower(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB, rcsSqm)
		}
	}
	f.metrics.IncQuery("received_power", false)
	return profile.SmallDBVal
}

// logFor resolves the logger for a query: a logger carried on the
// context wins so callers can scope warnings to their own operation.
func (f *Facade) logFor(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return f.log
}

// findProvider locates the profile covering a bearing and its provider
// for the wanted quantity, logging the reason when either is missing.
func (f *Facade) findProvider(ctx context.Context, azimRad float64, typ profile.ThresholdType, quantity string) profile.DataProvider {
	prof := f.manager.GetProfileByBearing(azimRad)
	if prof == nil {
		f.logFor(ctx).Warn(ctx, "no profile found for beam at requested bearing",
			logging.Float64("bearing_rad", azimRad))
		return nil
	}
	p := prof.DataProvider().GetProvider(typ)
	if p == nil {
		f.logFor(ctx).Warn(ctx, "no "+quantity+" data provider found for beam at requested bearing",
			logging.Float64("bearing_rad", azimRad))
		return nil
	}
	return p
}

// inBounds checks the query point against the provider's grid, logging
// which limit was violated.
func (f *Facade) inBounds(ctx context.Context, p profile.DataProvider, quantity string, gndRngMeters, hgtMeters float64) bool {
	if gndRngMeters < p.MinRange() || gndRngMeters > p.MaxRange() {
		f.logFor(ctx).Warn(ctx, quantity+" request outside of profile range limits",
			logging.Float64("range_m", gndRngMeters))
		return false
	}
	if hgtMeters < p.MinHeight() || hgtMeters > p.MaxHeight() {
		f.logFor(ctx).Warn(ctx, quantity+" request outside of profile height limits",
			logging.Float64("height_m", hgtMeters))
		return false
	}
	return true
}

func clampSmallDB(v float64) float64 {
	if v > profile.SmallDBVal {
		return v
	}
	return profile.SmallDBVal
}
