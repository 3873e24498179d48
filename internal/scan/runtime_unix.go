//go:build !windows

package scan

import (
	"errors"
	"fmt"
	"os/exec"
)

// FindRuntime resolves the scanner binary through PATH.
func FindRuntime(runtime string) (string, error) {
	binPath, err := exec.LookPath(runtime)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", NewRuntimeError(fmt.Sprintf("`%s` not found in PATH", runtime), err)
		}
		return "", NewRuntimeError("failed to locate binary", err)
	}

	return binPath, nil
}
