// Package rebin resamples spectra onto new wavelength grids while conserving
// total counts, and integrates resampled counts into arbitrary catalog bins.
//
// Common workflow:
//   - UniformGrid(lo, hi, step): grid spanning the rounded observed range
//   - Resample(grid, wave, counts, WithOversampling(200)): flux-conserving
//     redistribution of each source pixel into the grid bins
//   - Integrate(centers, widths, grid, binned): one count per catalog bin
//
// Resample splits every source pixel into n equal sub-pixels, each carrying
// 1/n of the pixel's counts, and assigns each sub-pixel to the grid bin that
// contains its center. Counts falling inside the grid span are conserved
// exactly; the placement error of a bin boundary shrinks as 1/n.
package rebin
