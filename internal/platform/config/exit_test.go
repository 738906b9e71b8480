package config_test

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/louisbranch/backer.space/internal/platform/config"
)

// Exitf is exercised in a subprocess since os.Exit ends the test binary.
func TestExitfUsesGivenCode(t *testing.T) {
	if raw := os.Getenv("BACKER_SPACE_TEST_EXIT_CODE"); raw != "" {
		code, _ := strconv.Atoi(raw)
		config.Exitf(code, "profile: %s", "refresh failed")
		return
	}

	for _, code := range []int{config.ExitFailure, config.ExitUsage} {
		cmd := exec.Command(os.Args[0], "-test.run=^TestExitfUsesGivenCode$")
		cmd.Env = append(os.Environ(), "BACKER_SPACE_TEST_EXIT_CODE="+strconv.Itoa(code))

		out, err := cmd.CombinedOutput()
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("err = %T %v, want *exec.ExitError", err, err)
		}
		if exitErr.ExitCode() != code {
			t.Fatalf("exit code = %d, want %d", exitErr.ExitCode(), code)
		}
		if !strings.Contains(string(out), "profile: refresh failed") {
			t.Fatalf("stderr = %q, want message", string(out))
		}
	}
}
