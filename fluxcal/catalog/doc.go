// Package catalog reads standard-star flux catalogs and converts their AB
// magnitudes to flux density per unit wavelength.
//
// Catalog files are whitespace-delimited with columns wavelength (Å), AB
// magnitude and, optionally, bin width (Å). Blank lines and lines starting
// with '#' are ignored. When the width column is absent the bin width is
// derived from the spacing of neighboring wavelengths.
//
// Catalog files are located through a [Resolver], so callers never change
// the process working directory to read them.
package catalog
