// Package charts draws the dashboard's charts with go-chart.
//
// go-chart covers bars, stacked bars, lines and scatter plots. Heatmaps,
// box plots, histograms, treemaps and funnels are reported through
// Supports and come back from Render as a Table, which the HTML page and
// the JSON API show in place of the image.
package charts
