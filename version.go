// Package perceptgo provides the version information for percept-go.
package perceptgo

// Version is the current version of percept-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
