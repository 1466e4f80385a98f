package profile

import "math"

// Physical constants used by the received-power equations.
const (
	// LightSpeedAir is the speed of light in air (m/s).
	LightSpeedAir = 299702547.23582925122463261021693
	// RREConstant is (4*pi)^3, the denominator constant of the radar
	// range equation.
	RREConstant = 1984.40170753918820
	// fourPiSqrd is (4*pi)^2, the one-way spreading constant.
	fourPiSqrd = 157.91367041742973790135185599802
)

// SmallDBVal is the near negative-infinity sentinel returned for any
// missing or out-of-bounds dB quantity. SmallDBCompare is the threshold
// used when testing a value against the sentinel.
const (
	SmallDBVal     = -300.0
	SmallDBCompare = -299.0
)

// RadarParameters carries the radar description extracted from the first
// file of an ingested file set. NoisePowerdB and XmitPowerW are derived
// from the other fields when the parameters are bound; callers set the
// remaining fields only.
type RadarParameters struct {
	FreqMHz           float64 `json:"freqMhz"`
	AntennaGaindB     float64 `json:"antennaGainDb"`
	NoiseFiguredB     float64 `json:"noiseFigureDb"`
	PulseWidthUsec    float64 `json:"pulseWidthUsec"`
	SystemLossdB      float64 `json:"systemLossDb"`
	XmitPowerKW       float64 `json:"xmitPowerKw"`
	HorizBeamWidthDeg float64 `json:"horizBeamWidthDeg"`

	// Derived; populated by Finalize.
	NoisePowerdB float64 `json:"-"`
	XmitPowerW   float64 `json:"-"`
}

// Finalize computes the derived noise power and transmit power fields.
// Noise power is 10*log10(kT/pw) at the standard ambient 290 K plus the
// receiver noise figure.
func (p *RadarParameters) Finalize() {
	p.NoisePowerdB = Linear2dB(4e-15/p.PulseWidthUsec) + p.NoiseFiguredB
	p.XmitPowerW = p.XmitPowerKW * 1e3
}

// Equal reports whether the caller-supplied fields match. Derived fields
// are ignored so a finalized value compares equal to its unfinalized
// original.
func (p RadarParameters) Equal(o RadarParameters) bool {
	return p.FreqMHz == o.FreqMHz &&
		p.AntennaGaindB == o.AntennaGaindB &&
		p.NoiseFiguredB == o.NoiseFiguredB &&
		p.PulseWidthUsec == o.PulseWidthUsec &&
		p.SystemLossdB == o.SystemLossdB &&
		p.XmitPowerKW == o.XmitPowerKW &&
		p.HorizBeamWidthDeg == o.HorizBeamWidthDeg
}

// Linear2dB converts a linear power ratio to decibels.
func Linear2dB(linear float64) float64 {
	return 10 * math.Log10(linear)
}

// DB2Linear converts decibels to a linear power ratio.
func DB2Linear(db float64) float64 {
	return math.Pow(10, db/10)
}

// ReceivedPowerFreeSpace computes free-space received power in dB.
//
// rngMeters is slant range, freqMHz the transmit frequency, powerWatts
// peak transmit power, gains in dB, rcsSqm the target radar cross
// section in square meters (ignored for one-way), systemLossdB total
// system loss. The two-way form is the classic radar range equation
// with a 1/R^4 spreading term; the one-way form spreads as 1/R^2.
func ReceivedPowerFreeSpace(rngMeters, freqMHz, powerWatts, xmtGaindB, rcvGaindB, rcsSqm, systemLossdB float64, oneWay bool) float64 {
	if rngMeters < 1 {
		rngMeters = 1
	}
	freqSqrd := freqMHz * freqMHz * 1e12
	if oneWay {
		spread := powerWatts * LightSpeedAir * LightSpeedAir /
			(fourPiSqrd * freqSqrd * rngMeters * rngMeters)
		return xmtGaindB + rcvGaindB - systemLossdB + Linear2dB(spread)
	}
	r4 := rngMeters * rngMeters * rngMeters * rngMeters
	spread := powerWatts * rcsSqm * LightSpeedAir * LightSpeedAir /
		(RREConstant * freqSqrd * r4)
	return xmtGaindB + rcvGaindB - systemLossdB + Linear2dB(spread)
}

// ReceivedPowerBlake computes received power including the pattern
// propagation factor, after Blake. The PPF enters squared on a one-way
// path and to the fourth power on a two-way path, which in dB terms is
// 2x or 4x the PPF value.
func ReceivedPowerBlake(rngMeters, freqMHz, powerWatts, xmtGaindB, rcvGaindB, rcsSqm, ppfdB, systemLossdB float64, oneWay bool) float64 {
	freeSpace := ReceivedPowerFreeSpace(rngMeters, freqMHz, powerWatts, xmtGaindB, rcvGaindB, rcsSqm, systemLossdB, oneWay)
	if oneWay {
		return freeSpace + 2*ppfdB
	}
	return freeSpace + 4*ppfdB
}
