// Package scan drives a market analysis run against the YouTube Data API:
// a region-by-region search scan with global dedup, statistics enrichment
// for the top batch, and scoring into a final report.
//
// All remote calls go through a key rotator, so a key hitting its daily
// quota mid-run hands over to the next key transparently.
package scan
