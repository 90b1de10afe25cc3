package shared

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("%w: unsupported platform: %s", ErrBrowserLaunch, rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	return nil
}

// ConfigDir returns the per-user spotimine directory, creating it if needed.
//
// %APPDATA%\spotimine on Windows, $HOME/.config/spotimine elsewhere.
func ConfigDir() (string, error) {
	var base string
	if getRuntime() == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			return "", fmt.Errorf("%w: APPDATA is not set", ErrConfigIO)
		}
	} else {
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("%w: HOME is not set", ErrConfigIO)
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrConfigIO, dir, err)
	}
	return dir, nil
}
