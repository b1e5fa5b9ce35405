package ui

import (
	"os/exec"
	"runtime"
)

var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

var lookPath = exec.LookPath

// OpenBrowser opens url in the default browser. When no opener is known the
// URL is printed instead.
func (u *UI) OpenBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return startCommand("open", url)
	case "linux":
		for _, opener := range []string{"xdg-open", "gnome-open", "sensible-browser"} {
			if _, err := lookPath(opener); err == nil {
				return startCommand(opener, url)
			}
		}
		u.Infof("Could not find a browser opener. Please visit:\n  %s", url)
		return nil
	case "windows":
		return startCommand("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		u.Infof("Unsupported OS. Please visit:\n  %s", url)
		return nil
	}
}
