// Package ui holds the terminal styling for wledctl output.
//
// Status lines are plain text unless stdout is a terminal, in which case
// success and failure messages are coloured with lipgloss. The discover
// listing aligns hostnames in a fixed-width column:
//
//	livingroom               10.0.0.5:80
//	kitchen                  10.0.0.6:80
package ui
