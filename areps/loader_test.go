package areps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/rfprop-engine/profile"
)

type fakeHandler struct {
	params    profile.RadarParameters
	paramsSet int
	pod       profile.PODVector
}

func (h *fakeHandler) SetRadarParams(p profile.RadarParameters) error {
	p.Finalize()
	h.params = p
	h.paramsSet++
	return nil
}

func (h *fakeHandler) RadarParams() *profile.RadarParameters { return &h.params }

func (h *fakeHandler) SetPODLossThreshold(thresholds []float64) error {
	if len(thresholds) != profile.PODVectorSize {
		return errors.New("wrong threshold count")
	}
	v := make(profile.PODVector, len(thresholds))
	for i, t := range thresholds {
		v[i] = -t
	}
	h.pod = v
	return nil
}

func (h *fakeHandler) PODLossThreshold() profile.PODVector { return h.pod }

// podBlock renders ten lines of ten positive thresholds descending from
// 199 to 100 dB.
func podBlock() string {
	var b strings.Builder
	b.WriteString("[Probability of detection]\n")
	b.WriteString("# thresholds in dB for POD 1% to 100%\n")
	for i := 0; i < 10; i++ {
		vals := make([]string, 10)
		for j := 0; j < 10; j++ {
			vals[j] = fmt.Sprintf("%d.0", 199-(i*10+j))
		}
		b.WriteString(strings.Join(vals, " ") + "\n")
	}
	return b.String()
}

func firstFileText() string {
	return `# AREPS propagation output
AntGain : 45.0
AntHt : 30.0
Freq : 3000.0
Noise : 5.0
PulseWidth : 10.0
SysLoss : 0.0
TransPower : 20.0
Hmax : 200.0
Hmin : 0.0
Nrout : 4
Nzout : 2
Rmax : 4000.0
HorBw : 10.0
Bearing : 45` + "\xb0" + `T
` + podBlock() + `[Clutter to noise ratio]
# CNR in dB per range step
100.0 200.0
300.0 400.0
[Apm Loss Data]
# sentinel values: -32768 init, -32766 ground
Range(m) vs Height(m)
1200 1300
1400 1500
Height( 100.0)
1600 1700 1800 1900
Height( 200.0)
2000 2100 -32678 2300

[Apm Factor Data]
Range(m) vs Height(m)
-100 -200 -300 -400
Height( 100.0)
-500 -600 -700 -800
Height( 200.0)
-900 -1000 -1100 -1200
`
}

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFirstFile(t *testing.T) {
	handler := &fakeHandler{}
	loader := NewLoader(handler, nil)
	path := writeFile(t, "SCORE1_APM_10.txt", firstFileText())

	beam, err := loader.LoadFile(context.Background(), path, true)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// the Bearing key overrides the filename bearing
	if want := 45.0 * math.Pi / 180.0; math.Abs(beam.BearingRad-want) > 1e-12 {
		t.Errorf("bearing = %v, want %v", beam.BearingRad, want)
	}
	if want := 5.0 * math.Pi / 180.0; math.Abs(beam.HalfBeamWidthRad-want) > 1e-12 {
		t.Errorf("half beam width = %v, want %v", beam.HalfBeamWidthRad, want)
	}
	if beam.MaxHeight != 200.0 {
		t.Errorf("max height = %v, want 200", beam.MaxHeight)
	}
	if loader.AntennaHeight() != 30.0 {
		t.Errorf("antenna height = %v, want 30", loader.AntennaHeight())
	}

	if handler.paramsSet != 1 {
		t.Fatalf("radar params set %d times, want 1", handler.paramsSet)
	}
	p := handler.params
	if p.FreqMHz != 3000 || p.AntennaGaindB != 45 || p.NoiseFiguredB != 5 ||
		p.PulseWidthUsec != 10 || p.XmitPowerKW != 20 || p.HorizBeamWidthDeg != 10 {
		t.Errorf("unexpected radar params: %+v", p)
	}
	if p.XmitPowerW != 20000 {
		t.Errorf("params not finalized: xmit power = %v W", p.XmitPowerW)
	}

	// loss, CNR, PPF from the file; POD, one-way, two-way, SNR derived
	if got := beam.Providers.ProviderCount(); got != 7 {
		t.Fatalf("provider count = %d, want 7", got)
	}

	loss := beam.Providers.GetProvider(profile.ThresholdLoss)
	if loss == nil {
		t.Fatal("no loss provider")
	}
	if got := loss.ValueByIndex(0, 0); got != 120.0 {
		t.Errorf("loss[0][0] = %v, want 120", got)
	}
	if got := loss.ValueByIndex(1, 3); got != 190.0 {
		t.Errorf("loss[1][3] = %v, want 190", got)
	}
	// -32678 is remapped to the init sentinel
	if got := loss.ValueByIndex(2, 2); got != profile.NoDataValue {
		t.Errorf("remapped sentinel = %v, want %v", got, profile.NoDataValue)
	}
	if loss.HeightCount() != 3 || loss.RangeCount() != 4 {
		t.Errorf("loss grid = %dx%d, want 3x4", loss.HeightCount(), loss.RangeCount())
	}
	if loss.MinRange() != 1000 || loss.MaxRange() != 4000 {
		t.Errorf("loss range axis = [%v, %v], want [1000, 4000]", loss.MinRange(), loss.MaxRange())
	}
	if loss.MinHeight() != 0 || loss.MaxHeight() != 200 {
		t.Errorf("loss height axis = [%v, %v], want [0, 200]", loss.MinHeight(), loss.MaxHeight())
	}

	cnr := beam.Providers.GetProvider(profile.ThresholdCNR)
	if cnr == nil {
		t.Fatal("no CNR provider")
	}
	if got := cnr.ValueByIndex(0, 1); got != 20.0 {
		t.Errorf("cnr[1] = %v, want 20", got)
	}
	if cnr.MinRange() != 1000 || cnr.MaxRange() != 4000 || cnr.RangeCount() != 4 {
		t.Errorf("cnr axis = [%v, %v]x%d, want [1000, 4000]x4", cnr.MinRange(), cnr.MaxRange(), cnr.RangeCount())
	}

	// loss 120 dB sign-inverts to -120, threshold index 79 of the
	// -199..-100 vector
	pod := beam.Providers.GetProvider(profile.ThresholdPOD)
	if pod == nil {
		t.Fatal("no POD provider")
	}
	if got := pod.ValueByIndex(0, 0); got != 79.0 {
		t.Errorf("pod[0][0] = %v, want 79", got)
	}

	for _, typ := range []profile.ThresholdType{
		profile.ThresholdFactor,
		profile.ThresholdOneWayPower,
		profile.ThresholdReceivedPower,
		profile.ThresholdSNR,
	} {
		if beam.Providers.GetProvider(typ) == nil {
			t.Errorf("no %s provider", typ)
		}
	}
}

func TestLoadSubsequentFileReusesExtents(t *testing.T) {
	handler := &fakeHandler{}
	loader := NewLoader(handler, nil)
	first := writeFile(t, "SET_APM_10.txt", firstFileText())
	if _, err := loader.LoadFile(context.Background(), first, true); err != nil {
		t.Fatalf("first LoadFile failed: %v", err)
	}

	second := writeFile(t, "SET_APM_20.txt", `Bearing : 90`+"\xb0"+`T
HorBw : 10.0
[Apm Loss Data]
Range(m) vs Height(m)
1000 1001 1002 1003
Height( 100.0)
1100 1101 1102 1103
Height( 200.0)
1200 1201 1202 1203
`)
	beam, err := loader.LoadFile(context.Background(), second, false)
	if err != nil {
		t.Fatalf("second LoadFile failed: %v", err)
	}

	if want := 90.0 * math.Pi / 180.0; math.Abs(beam.BearingRad-want) > 1e-12 {
		t.Errorf("bearing = %v, want %v", beam.BearingRad, want)
	}
	// radar params were not re-read
	if handler.paramsSet != 1 {
		t.Errorf("radar params set %d times, want 1", handler.paramsSet)
	}

	loss := beam.Providers.GetProvider(profile.ThresholdLoss)
	if loss == nil {
		t.Fatal("no loss provider")
	}
	// grid extents retained from the first file
	if loss.HeightCount() != 3 || loss.RangeCount() != 4 {
		t.Errorf("loss grid = %dx%d, want 3x4", loss.HeightCount(), loss.RangeCount())
	}
	if got := loss.ValueByIndex(1, 2); got != 110.2 {
		t.Errorf("loss[1][2] = %v, want 110.2", got)
	}
	// POD derives from the thresholds the first file registered
	if beam.Providers.GetProvider(profile.ThresholdPOD) == nil {
		t.Error("no POD provider on second file")
	}
	// no PPF section, so no power providers
	if beam.Providers.GetProvider(profile.ThresholdSNR) != nil {
		t.Error("unexpected SNR provider without PPF data")
	}
}

func TestLoadWithoutHandlerSkipsDerived(t *testing.T) {
	loader := NewLoader(nil, nil)
	path := writeFile(t, "SOLO_APM_10.txt", firstFileText())
	beam, err := loader.LoadFile(context.Background(), path, true)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	// only the data read from the file: loss, CNR, PPF
	if got := beam.Providers.ProviderCount(); got != 3 {
		t.Errorf("provider count = %d, want 3", got)
	}
	if beam.Providers.GetProvider(profile.ThresholdPOD) != nil {
		t.Error("unexpected POD provider without a handler")
	}
}

func TestBearingFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		wantDeg float64
	}{
		{"SCORE1_APM_45.txt", 45},
		{"SCORE1_APM_0_15.txt", 0.25},
		{"SCORE1_APM_0_15_30.txt", 0.25 + 30.0/3600.0},
		{"data/run2_apm_180.txt", 180},
	}
	for _, tt := range tests {
		got := bearingFromFilename(tt.name)
		want := profile.WrapTwoPi(tt.wantDeg * math.Pi / 180.0)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("bearingFromFilename(%q) = %v rad, want %v", tt.name, got, want)
		}
	}
	// too few tokens yields the raw invalid marker
	if got := bearingFromFilename("flat.txt"); got != -1.0 {
		t.Errorf("bearingFromFilename(flat.txt) = %v, want -1", got)
	}
}

func TestLoadErrors(t *testing.T) {
	handler := &fakeHandler{}
	loader := NewLoader(handler, nil)
	ctx := context.Background()

	if _, err := loader.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.txt"), true); err == nil {
		t.Error("expected error for missing file")
	}

	empty := writeFile(t, "EMPTY_APM_10.txt", "# nothing here\n")
	if _, err := loader.LoadFile(ctx, empty, true); err == nil {
		t.Error("expected error for file without data sections")
	}

	badPOD := writeFile(t, "BADPOD_APM_10.txt", `Nrout : 4
Rmax : 4000.0
[Probability of detection]
# comment
1.0 2.0 3.0
`)
	if _, err := loader.LoadFile(ctx, badPOD, true); err == nil {
		t.Error("expected error for malformed POD block")
	}

	badGain := writeFile(t, "BADGAIN_APM_10.txt", "AntGain : not-a-number\n")
	if _, err := loader.LoadFile(ctx, badGain, true); err == nil {
		t.Error("expected error for unparseable antenna gain")
	}
}

func TestLoadIsDeterministic(t *testing.T) {
	text := firstFileText()
	pathA := writeFile(t, "RUN1_APM_45.txt", text)
	pathB := writeFile(t, "RUN2_APM_45.txt", text)
	ctx := context.Background()

	beamA, err := NewLoader(&fakeHandler{}, nil).LoadFile(ctx, pathA, true)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	beamB, err := NewLoader(&fakeHandler{}, nil).LoadFile(ctx, pathB, true)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	if beamA.BearingRad != beamB.BearingRad ||
		beamA.HalfBeamWidthRad != beamB.HalfBeamWidthRad ||
		beamA.MaxHeight != beamB.MaxHeight {
		t.Fatalf("beam geometry diverged: %+v vs %+v", beamA, beamB)
	}
	if beamA.Providers.ProviderCount() != beamB.Providers.ProviderCount() {
		t.Fatalf("provider count diverged: %d vs %d",
			beamA.Providers.ProviderCount(), beamB.Providers.ProviderCount())
	}

	types := []profile.ThresholdType{
		profile.ThresholdPOD, profile.ThresholdLoss, profile.ThresholdFactor,
		profile.ThresholdSNR, profile.ThresholdCNR, profile.ThresholdOneWayPower,
		profile.ThresholdReceivedPower,
	}
	for _, typ := range types {
		pa := beamA.Providers.GetProvider(typ)
		pb := beamB.Providers.GetProvider(typ)
		if (pa == nil) != (pb == nil) {
			t.Fatalf("%s provider present in one load only", typ)
		}
		if pa == nil {
			continue
		}
		if pa.HeightCount() != pb.HeightCount() || pa.RangeCount() != pb.RangeCount() ||
			pa.MinRange() != pb.MinRange() || pa.MaxRange() != pb.MaxRange() ||
			pa.MinHeight() != pb.MinHeight() || pa.MaxHeight() != pb.MaxHeight() {
			t.Fatalf("%s grid extents diverged", typ)
		}
		for h := 0; h < pa.HeightCount(); h++ {
			for r := 0; r < pa.RangeCount(); r++ {
				va := pa.ValueByIndex(h, r)
				vb := pb.ValueByIndex(h, r)
				if va != vb {
					t.Fatalf("%s sample (%d, %d) diverged: %v vs %v", typ, h, r, va, vb)
				}
			}
		}
	}
}
