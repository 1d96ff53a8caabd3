// Package kinds provides the per-kind value detectors used by mixed-initiative extraction,
// the registry that maps a domain.Kind to its detector, and the locale data tables
// (month names, stop-words, confirmation phrases) the heuristics read from.
package kinds
