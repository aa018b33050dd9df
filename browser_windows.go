//go:build windows

package justel

import (
	"os/exec"
	"strconv"
)

// killTree force-kills the browser and its child processes.
func killTree(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid from the launcher
}
