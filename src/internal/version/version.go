// Package version carries build identity, overridable via -ldflags.
package version

var (
	Name    = "bibrarian"
	Version = "1.0.0"
)
