// Package organizer implements the distribution run: it walks an input
// tree of camera files, classifies them by extension, filters on capture
// date, and copies them into YYYY/YYYYMMDD directories under the output
// roots. When a cache is supplied, files unchanged since a previous run
// are skipped and successful copies are recorded.
package organizer
