//go:build !windows

package platform

func runElevated(path string) error {
	return runAndWait(path)
}
