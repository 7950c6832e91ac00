// Package extinction corrects spectra for atmospheric extinction.
//
// A natural cubic spline is fitted once over the tabulated CTIO extinction
// coefficients (3050-11000.2 Å). The spline interpolates: it passes exactly
// through every tabulated value instead of trading fidelity for smoothness
// the way a smoothing spline with a small residual budget would. The table
// is already smooth, so the two differ by well under a millimagnitude
// between knots. For a spectrum observed at airmass X the
// corrected flux is
//
//	corrected(λ) = flux(λ) · 10^(0.4 · a(λ) · (1 + X))
//
// where a(λ) is the spline evaluated at λ. Outside the tabulated domain the
// coefficient is clamped to the nearest boundary value.
package extinction
