// Package market holds the domain model of a market scan: scan parameters
// and region catalog, the dedup pool, the enriched report rows, the scoring
// rules, and report export.
//
// Everything in this package is pure: no HTTP calls, no clocks, no
// goroutines. The scan package feeds it data and the CLI renders what
// comes out.
package market
