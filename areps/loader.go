// Package areps reads AREPS ASCII terrain-propagation output files and
// assembles the data providers for one beam of a propagation display.
package areps

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/signalsfoundry/rfprop-engine/internal/logging"
	"github.com/signalsfoundry/rfprop-engine/lut"
	"github.com/signalsfoundry/rfprop-engine/profile"
)

const (
	// scaleFactor converts the decibel quantities in an AREPS file to the
	// centibel shorts stored in the lookup tables.
	scaleFactor = 10.0

	// InitValue marks a cell APM never filled in.
	InitValue int16 = -32768
	// erroneousInitValue appears in some AREPS exports in place of
	// InitValue and is remapped on read.
	erroneousInitValue int16 = -32678
	// GroundValue marks a cell below the terrain surface.
	GroundValue int16 = -32766
)

const degToRad = math.Pi / 180.0

// BeamHandler receives the radar description and POD thresholds parsed
// from the first file of a set, and supplies them back when the loader
// wires up the derived providers.
type BeamHandler interface {
	SetRadarParams(params profile.RadarParameters) error
	RadarParams() *profile.RadarParameters
	SetPODLossThreshold(thresholds []float64) error
	PODLossThreshold() profile.PODVector
}

// Beam is the result of loading a single AREPS file: the parsed providers
// plus the display geometry the file describes.
type Beam struct {
	BearingRad       float64
	HalfBeamWidthRad float64
	MaxHeight        float64
	Providers        *profile.CompositeProvider
}

// Loader parses AREPS files. Grid extents and radar parameters are read
// from the first file of a set and retained for the files that follow.
type Loader struct {
	handler BeamHandler
	log     logging.Logger

	maxHeight  float64
	minHeight  float64
	numRanges  int
	numHeights int
	maxRange   float64
	minRange   float64
	antennaHgt float64
}

// NewLoader returns a loader wired to the given handler. handler may be
// nil, in which case POD and power providers are not created.
func NewLoader(handler BeamHandler, log logging.Logger) *Loader {
	if log == nil {
		log = logging.Noop()
	}
	return &Loader{handler: handler, log: log}
}

// AntennaHeight reports the antenna height above ground read from the
// first file of the set, in meters.
func (l *Loader) AntennaHeight() float64 { return l.antennaHgt }

// LoadFile parses one AREPS file into a Beam. firstFile selects whether
// the per-set keys (grid extents, radar parameters, POD thresholds) are
// processed; subsequent files of a set reuse the retained values.
func (l *Loader) LoadFile(ctx context.Context, path string, firstFile bool) (*Beam, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("areps: could not open file %s: %w", path, err)
	}
	defer f.Close()
	l.log.Info(ctx, "loading AREPS file", logging.String("file", path))

	// Older AREPS versions embed the bearing in the filename.
	bearingRad := bearingFromFilename(path)
	var params profile.RadarParameters
	providers := profile.NewCompositeProvider()

	lr := &lineReader{s: bufio.NewScanner(f)}
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		tokens := fields(line)
		if len(tokens) == 0 || tokens[0] == "#" {
			continue
		}

		if firstFile {
			handled, err := l.parseFirstFileKey(ctx, lr, line, tokens, &params, path)
			if err != nil {
				return nil, err
			}
			if handled {
				continue
			}
		}

		switch {
		case tokens[0] == "Bearing" && len(tokens) >= 3:
			// Newer AREPS versions carry the bearing in the file itself,
			// suffixed with a degree symbol.
			tok := tokens[2]
			if len(tokens) > 3 {
				tok = tokens[3]
			}
			deg, err := strconv.ParseFloat(numericPrefix(tok), 64)
			if err != nil {
				return nil, fmt.Errorf("areps: could not determine bearing in file %s", path)
			}
			bearingRad = profile.WrapTwoPi(deg * degToRad)

		case (tokens[0] == "HorBw" || tokens[0] == "HorzBwidth") && len(tokens) >= 3:
			if err := parseFloat(tokens[2], &params.HorizBeamWidthDeg); err != nil {
				return nil, fmt.Errorf("areps: could not determine beam width in file %s", path)
			}

		case line == "[Clutter to noise ratio]":
			cnr, err := l.parseCNR(lr, path)
			if err != nil {
				return nil, err
			}
			if err := providers.AddProvider(cnr); err != nil {
				return nil, fmt.Errorf("areps: file %s: %w", path, err)
			}

		case line == "[Apm Loss Data]" || line == "[Apm Factor Data]":
			typ := profile.ThresholdLoss
			if line == "[Apm Factor Data]" {
				typ = profile.ThresholdFactor
			}
			p, err := l.parseAPMGrid(lr, typ, path)
			if err != nil {
				return nil, err
			}
			if err := providers.AddProvider(p); err != nil {
				return nil, fmt.Errorf("areps: file %s: %w", path, err)
			}
		}
	}

	if providers.ProviderCount() == 0 {
		return nil, fmt.Errorf("areps: file %s did not contain valid AREPS data", path)
	}

	// Radar parameters from the first file hold for all subsequent files.
	if firstFile && l.handler != nil {
		if err := l.handler.SetRadarParams(params); err != nil {
			return nil, fmt.Errorf("areps: file %s: %w", path, err)
		}
	}

	var missingData, missingCalcs []string

	lossProvider := providers.GetProvider(profile.ThresholdLoss)
	if l.handler != nil && lossProvider != nil {
		pod := profile.NewPODProvider(lossProvider, l.handler.PODLossThreshold())
		if err := providers.AddProvider(pod); err != nil {
			return nil, fmt.Errorf("areps: file %s: %w", path, err)
		}
	} else if lossProvider == nil {
		missingData = append(missingData, "loss")
		missingCalcs = append(missingCalcs, "loss, POD")
	}

	ppfProvider := providers.GetProvider(profile.ThresholdFactor)
	if l.handler != nil && ppfProvider != nil {
		radar := l.handler.RadarParams()
		oneWay := profile.NewOneWayPowerProvider(ppfProvider, radar)
		twoWay := profile.NewTwoWayPowerProvider(ppfProvider, radar)
		snr := profile.NewSNRProvider(twoWay, radar)
		for _, p := range []profile.DataProvider{oneWay, twoWay, snr} {
			if err := providers.AddProvider(p); err != nil {
				return nil, fmt.Errorf("areps: file %s: %w", path, err)
			}
		}
	} else if ppfProvider == nil {
		missingData = append(missingData, "PPF")
		missingCalcs = append(missingCalcs, "PPF, one-way power, two-way power, SNR")
	}

	if providers.GetProvider(profile.ThresholdCNR) == nil {
		missingData = append(missingData, "CNR")
		missingCalcs = append(missingCalcs, "CNR")
	}

	if len(missingData) > 0 {
		l.log.Warn(ctx, "AREPS file is missing data types",
			logging.String("file", path),
			logging.String("missing", strings.Join(missingData, ", ")),
			logging.String("unavailable_calcs", strings.Join(missingCalcs, ", ")))
	}

	return &Beam{
		BearingRad:       bearingRad,
		HalfBeamWidthRad: params.HorizBeamWidthDeg * degToRad / 2.0,
		MaxHeight:        l.maxHeight,
		Providers:        providers,
	}, nil
}

// parseFirstFileKey handles the keys that only the first file of a set
// contributes. Returns true when the line was consumed.
func (l *Loader) parseFirstFileKey(ctx context.Context, lr *lineReader, line string, tokens []string, params *profile.RadarParameters, path string) (bool, error) {
	if len(tokens) >= 3 {
		var dst *float64
		var what string
		switch tokens[0] {
		case "AntGain":
			dst, what = &params.AntennaGaindB, "antenna gain"
		case "AntHt":
			dst, what = &l.antennaHgt, "antenna height"
		case "Freq":
			dst, what = &params.FreqMHz, "freq"
		case "Noise":
			dst, what = &params.NoiseFiguredB, "noise figure"
		case "PulseWidth":
			dst, what = &params.PulseWidthUsec, "pulse width"
		case "SysLoss":
			dst, what = &params.SystemLossdB, "system loss"
		case "TransPower":
			dst, what = &params.XmitPowerKW, "transmit power"
		case "Hmax":
			dst, what = &l.maxHeight, "max height"
		case "Hmin":
			dst, what = &l.minHeight, "min height"
		case "Rmax":
			dst, what = &l.maxRange, "max range"
		case "Nrout":
			n, err := strconv.Atoi(tokens[2])
			if err != nil {
				return false, fmt.Errorf("areps: could not determine number of ranges in file %s", path)
			}
			l.numRanges = n
			return true, nil
		case "Nzout":
			n, err := strconv.Atoi(tokens[2])
			if err != nil {
				return false, fmt.Errorf("areps: could not determine number of heights in file %s", path)
			}
			// AREPS reports one fewer height sample than it writes.
			l.numHeights = n + 1
			return true, nil
		}
		if dst != nil {
			if err := parseFloat(tokens[2], dst); err != nil {
				return false, fmt.Errorf("areps: could not determine %s in file %s", what, path)
			}
			return true, nil
		}
	}

	if l.handler != nil && line == "[Probability of detection]" {
		if err := l.parsePOD(ctx, lr, path); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// parsePOD reads the 10x10 grid of detection thresholds that follows the
// probability-of-detection header. Values are positive decibels in
// decreasing order; the handler sign-inverts them on store.
func (l *Loader) parsePOD(ctx context.Context, lr *lineReader, path string) error {
	// comment line
	lr.next()
	thresholds := make([]float64, 0, profile.PODVectorSize)
	for i := 0; i < 10; i++ {
		line, _ := lr.next()
		tokens := fields(line)
		if len(tokens) != 10 {
			return fmt.Errorf("areps: bad formatting of POD data in file %s", path)
		}
		for _, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil || v < 0 {
				return fmt.Errorf("areps: invalid POD data in file %s", path)
			}
			thresholds = append(thresholds, v)
		}
	}
	if err := l.handler.SetPODLossThreshold(thresholds); err != nil {
		return fmt.Errorf("areps: error saving POD data from file %s: %w", path, err)
	}
	return nil
}

// parseCNR reads the clutter-to-noise section into a one-dimensional
// range table.
func (l *Loader) parseCNR(lr *lineReader, path string) (*profile.Table1DProvider, error) {
	// comment line
	lr.next()

	// minRange and rangeStep are the same
	l.minRange = 0
	if l.numRanges != 0 {
		l.minRange = l.maxRange / float64(l.numRanges)
	}
	table, err := lut.NewTable1D(l.minRange, l.maxRange, l.numRanges)
	if err != nil {
		return nil, fmt.Errorf("areps: invalid CNR data in file %s: %w", path, err)
	}

	count := 0
	for count < l.numRanges {
		line, ok := lr.next()
		if !ok {
			return nil, fmt.Errorf("areps: invalid CNR data in file %s", path)
		}
		for _, tok := range fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if count == l.numRanges || err != nil {
				return nil, fmt.Errorf("areps: invalid CNR data in file %s", path)
			}
			// stored as decibels, converted to centibels
			table.SetValue(count, int16(math.Round(v*scaleFactor)))
			count++
		}
	}
	return profile.NewTable1DProvider(profile.ThresholdCNR, table, 1.0/scaleFactor), nil
}

// parseAPMGrid reads a height-by-range block of centibel shorts, used for
// both the loss and the pattern propagation factor sections.
func (l *Loader) parseAPMGrid(lr *lineReader, typ profile.ThresholdType, path string) (*profile.Table2DProvider, error) {
	what := "Loss"
	if typ == profile.ThresholdFactor {
		what = "PPF"
	}

	l.minRange = 0
	if l.numRanges != 0 {
		l.minRange = l.maxRange / float64(l.numRanges)
	}
	table, err := lut.NewTable2D(l.minHeight, l.maxHeight, l.numHeights, l.minRange, l.maxRange, l.numRanges)
	if err != nil {
		return nil, fmt.Errorf("areps: invalid %s data in file %s: %w", what, path, err)
	}

	// skip sentinel definitions and comments until the column header
	for {
		line, ok := lr.next()
		if !ok {
			return nil, fmt.Errorf("areps: invalid %s data in file %s", what, path)
		}
		if strings.Contains(line, "Height(") {
			break
		}
	}

	for i := 0; i < l.numHeights; i++ {
		line, ok := lr.next()
		k := 0
		for {
			for _, tok := range fields(line) {
				v, err := strconv.ParseInt(tok, 10, 16)
				if k == l.numRanges || err != nil {
					return nil, fmt.Errorf("areps: invalid %s data in file %s", what, path)
				}
				val := int16(v)
				// fix incorrect initialization value
				if val == erroneousInitValue {
					val = InitValue
				}
				table.SetValue(i, k, val)
				k++
			}
			// each height row is followed by the next row's label line
			line, ok = lr.next()
			if k >= l.numRanges {
				break
			}
			if !ok {
				return nil, fmt.Errorf("areps: invalid %s data in file %s", what, path)
			}
		}
	}
	return profile.NewTable2DProvider(typ, table, 1.0/scaleFactor, InitValue), nil
}

// bearingFromFilename recovers the beam bearing from filenames of the
// form NAME_APM_deg[_min[_sec]].txt, used before AREPS embedded the
// bearing in the file body.
func bearingFromFilename(path string) float64 {
	bearing := -1.0
	if path == "" {
		return bearing
	}
	base := path
	if i := strings.LastIndex(base, ".txt"); i >= 0 {
		base = base[:i]
	}
	tokens := strings.Split(base, "_")
	if len(tokens) < 2 {
		return bearing
	}

	// collect the tokens to the right of "APM", rightmost first
	var parts []string
	for i := len(tokens) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToUpper(tokens[i]), "APM") {
			break
		}
		parts = append(parts, tokens[i])
	}

	switch len(parts) {
	case 1:
		bearing = atof(parts[0])
	case 2:
		bearing = atof(parts[1]) + atof(parts[0])/60.0
	case 3:
		bearing = atof(parts[2]) + atof(parts[1])/60.0 + atof(parts[0])/3600.0
	}
	return profile.WrapTwoPi(bearing * degToRad)
}

type lineReader struct {
	s *bufio.Scanner
}

// next returns the next line with surrounding whitespace removed, and
// false once the input is exhausted.
func (r *lineReader) next() (string, bool) {
	if !r.s.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.s.Text()), true
}

// fields tokenizes a line on whitespace, dropping any quoting some AREPS
// exports wrap values in.
func fields(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, "\"", ""))
}

// numericPrefix strips the degree symbol, in either its Latin-1 or UTF-8
// encoding, and anything after it from a bearing token.
func numericPrefix(s string) string {
	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+' || s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	return s[:i]
}

func parseFloat(tok string, dst *float64) error {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
