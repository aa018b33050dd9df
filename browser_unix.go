//go:build !windows

package justel

import "syscall"

// killTree sends SIGKILL to the browser's process group so the renderer
// and GPU helpers Chrome spawned go with it.
func killTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
