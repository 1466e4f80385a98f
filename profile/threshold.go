// Package profile models per-bearing RF propagation profiles: the data
// provider hierarchy over loaded lookup tables, derived physical
// quantities, bearing-indexed slot maps, time-indexed profile managers,
// and the mesh generation that turns a profile into renderable geometry.
package profile

// ThresholdType identifies the physical quantity a data provider serves.
type ThresholdType int

const (
	ThresholdNone ThresholdType = iota
	ThresholdPOD
	ThresholdLoss
	ThresholdFactor // pattern propagation factor (PPF)
	ThresholdSNR
	ThresholdCNR
	ThresholdOneWayPower
	ThresholdReceivedPower
)

func (t ThresholdType) String() string {
	switch t {
	case ThresholdPOD:
		return "POD"
	case ThresholdLoss:
		return "Loss"
	case ThresholdFactor:
		return "PPF"
	case ThresholdSNR:
		return "SNR"
	case ThresholdCNR:
		return "CNR"
	case ThresholdOneWayPower:
		return "One-Way Power"
	case ThresholdReceivedPower:
		return "Received Power"
	case ThresholdNone:
		return "None"
	}
	return "Unknown"
}
