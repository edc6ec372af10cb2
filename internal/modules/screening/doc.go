// Package screening ranks a universe of daily price series by momentum.
//
// Each instrument goes through three stages:
//
//  1. Calculator turns the series into InstrumentMetrics: a regression-based
//     momentum score, annualized volatility and its inverse, fast and slow
//     moving averages and the median traded volume.
//  2. Eliminator applies the disqualification rules in strict priority order
//     (too young, invalid data, illiquid, suspended) and produces a Verdict.
//  3. Assembler collects verdicts into the kept and eliminated tables in input
//     order.
//
// Instruments are independent, so Screener fans the first two stages out over
// a bounded worker pool and assembles the results by input index afterwards.
// Sorting, top-N selection and export belong to the callers (see the export
// package).
package screening
