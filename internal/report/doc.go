// Package report derives dashboard totals, season history analytics,
// production and cash flow summaries from entity lists already loaded from
// the farm. Functions here never touch storage and never mutate their
// inputs.
package report
