package httpapi

import "syscall"

// reexecProcess replaces the current process image in place via
// execve, so the whole-process restart genuinely starts fresh (new
// PID-stable supervisor tree, no lingering goroutines) rather than
// just looking like one from the HTTP response.
func reexecProcess(exe string, args, env []string) error {
	return syscall.Exec(exe, args, env) //nolint:gosec // exe is os.Executable(), args/env are the process's own
}
