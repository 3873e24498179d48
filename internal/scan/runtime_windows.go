//go:build windows

package scan

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FindRuntime looks for the scanner under bin/ next to the executable or the
// working directory, falling back to PATH.
func FindRuntime(runtime string) (string, error) {
	lookup := []string{}

	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	lookup = append(lookup, filepath.Dir(exePath))

	exePath, err = os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	lookup = append(lookup, exePath)

	for _, exeDir := range lookup {
		matches, err := filepath.Glob(filepath.Join(exeDir, "bin", "*", fmt.Sprintf("%s.exe", runtime)))
		if err != nil || len(matches) == 0 {
			continue // continue to next directory
		}

		binPath := matches[0]
		if _, err = os.Stat(binPath); err != nil {
			continue // continue to next directory
		}

		return binPath, nil
	}

	binPath, err := exec.LookPath(runtime)
	if err != nil {
		return "", NewRuntimeError(fmt.Sprintf("failed to find binary '%s'", runtime), err)
	}
	return binPath, nil
}
