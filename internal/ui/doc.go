// Package ui renders the plain (non-dashboard) CLI output of groundcontrol:
// the version banner, the doctor report and simple tables.
//
// Colors are ANSI codes for broad terminal compatibility. Call
// DisableColors for --no-color or when NO_COLOR is set.
package ui
