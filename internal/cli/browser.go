package cli

import (
	"os/exec"
	"path/filepath"
	"runtime"
)

// openBrowser opens a local HTML file with the platform's default handler.
// Failures are ignored, the report is already on disk.
func openBrowser(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return
	}
	_ = cmd.Start()
}
