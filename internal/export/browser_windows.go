//go:build windows

package export

import "os/exec"

// openBrowser opens a URL in the default browser on Windows
func openBrowser(url string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Run()
}
