package rfprop

import "github.com/signalsfoundry/rfprop-engine/profile"

// defaultPODThresholds returns the stock loss thresholds for detection
// percentiles 1% through 100%, already sign-inverted into the ascending
// negative form the POD provider consumes.
func defaultPODThresholds() profile.PODVector {
	positive := []float64{
		161.81, 161.38, 161.08, 160.84, 160.64, 160.46, 160.30, 160.16, 160.03, 159.91,
		159.79, 159.68, 159.58, 159.48, 159.39, 159.29, 159.21, 159.12, 159.04, 158.96,
		158.88, 158.80, 158.72, 158.65, 158.57, 158.50, 158.43, 158.36, 158.29, 158.22,
		158.15, 158.08, 158.01, 157.95, 157.88, 157.81, 157.75, 157.68, 157.61, 157.54,
		157.48, 157.41, 157.34, 157.28, 157.21, 157.14, 157.07, 157.01, 156.94, 156.87,
		156.80, 156.73, 156.66, 156.58, 156.51, 156.44, 156.36, 156.29, 156.21, 156.13,
		156.06, 155.98, 155.90, 155.81, 155.73, 155.64, 155.55, 155.47, 155.37, 155.28,
		155.18, 155.08, 154.98, 154.88, 154.77, 154.66, 154.54, 154.42, 154.30, 154.17,
		154.03, 153.89, 153.74, 153.59, 153.42, 153.25, 153.06, 152.86, 152.64, 152.40,
		152.14, 151.86, 151.53, 151.16, 150.73, 150.20, 149.53, 148.60, 147.04, 147.04,
	}
	v := make(profile.PODVector, len(positive))
	for i, t := range positive {
		v[i] = -t
	}
	return v
}
