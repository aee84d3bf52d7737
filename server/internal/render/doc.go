// Package render draws transform figures as PNG or SVG images with go-chart.
//
// The pie shows one wedge per outcome class; the scatter draws one dot series
// per (booster category, launch site) group, so the color channel follows the
// booster and, when all sites are shown, dot size stands in for the per-site
// symbol. Empty figures render a labelled placeholder rather than failing.
package render
