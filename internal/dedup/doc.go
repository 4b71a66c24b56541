// Package dedup holds the duplicate resolution engine: identity keys, the
// grouper, survivor policies, the archive pre-filter and report assembly.
//
// Nothing in this package touches storage. Loading rows and deleting losers
// is the job of the usecase package, which feeds literal groups in here and
// applies the resulting outcomes.
package dedup
