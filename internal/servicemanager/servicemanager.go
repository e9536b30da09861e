// Package servicemanager installs a compage host as a per-user system service.
package servicemanager

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// binaryName is the executable a service runs when no path is given.
const binaryName = "compage"

// Platform is an operating system as reported by runtime.GOOS.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "darwin"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

func (p Platform) String() string {
	return string(p)
}

// Supervisor names the service supervisor used on p, or "" when compage
// cannot be installed there.
func (p Platform) Supervisor() string {
	switch p {
	case PlatformLinux:
		return "systemd"
	case PlatformMacOS:
		return "launchd"
	default:
		return ""
	}
}

// Supported reports whether a host can be installed as a service on p.
func (p Platform) Supported() bool {
	return p.Supervisor() != ""
}

// DetectPlatform returns the current platform.
func DetectPlatform() Platform {
	return platformOf(runtime.GOOS)
}

func platformOf(goos string) Platform {
	switch p := Platform(goos); p {
	case PlatformLinux, PlatformMacOS, PlatformWindows:
		return p
	default:
		return PlatformUnknown
	}
}

// BinaryPath returns the compage executable a service should start. The
// running executable wins unless it is a throwaway build from go run or go
// test, which disappears once the build cache is cleaned. Otherwise
// ~/.local/bin/compage, then a PATH lookup, and finally the bare name,
// resolved by the supervisor when the service starts.
func BinaryPath() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		if !isTransientBuild(exe) {
			return exe
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		localBin := filepath.Join(home, ".local", "bin", binaryName)
		if _, err := os.Stat(localBin); err == nil {
			return localBin
		}
	}

	if path, err := exec.LookPath(binaryName); err == nil {
		return path
	}

	return binaryName
}

// isTransientBuild reports whether exe lives in a go build work directory.
func isTransientBuild(exe string) bool {
	if strings.Contains(exe, string(filepath.Separator)+"go-build") {
		return true
	}
	return strings.HasSuffix(filepath.Base(exe), ".test")
}
