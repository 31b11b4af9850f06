// pkg/version/version.go - build information for the installer binaries.

package version

import "fmt"

// These values are private which ensures they can only be set with the build flags.
var (
	version   = "dev"
	revision  = "unknown"
	buildDate = "unknown"
	appName   = "spv3install"
)

// Info is a structure with version build information about the current application.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildDate string `json:"build_date"`
}

// Version returns the current version information.
func Version() Info {
	return Info{
		Version:   version,
		Revision:  revision,
		BuildDate: buildDate,
	}
}

// String renders the application name and version.
func String() string {
	return fmt.Sprintf("%s %s", appName, version)
}

// PrintFull prints the application name and detailed version information.
func PrintFull() {
	v := Version()
	fmt.Println(String())
	fmt.Printf("  revision: \t%s\n", v.Revision)
	fmt.Printf("  build date: \t%s\n", v.BuildDate)
}
