// Package sensfunc derives sensitivity functions from standard-star
// observations.
//
// A Builder extinction-corrects the observed counts, resamples them onto a
// fine uniform grid, sums them into the catalog bins and forms the
// log-sensitivity 2.5·log10[(counts/exptime/width)/(flux/width)]. Points
// inside the persisted or interactively selected mask are dropped and a
// polynomial is fitted in a review loop that runs until the Reviewer
// accepts an order.
package sensfunc
