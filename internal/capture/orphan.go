package capture

import (
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ReapOrphans scans for capture processes whose command line references
// segDirMarker and whose pid is not currentPid, TERMs them, waits up to
// 2s, then KILLs survivors. Matching both pid and a command-line marker
// (rather than image name alone) avoids reaping an unrelated ffmpeg
// invocation started by something else on the same host.
func ReapOrphans(segDirMarker string, currentPid int32) []int32 {
	procs, err := process.Processes()
	if err != nil {
		return nil
	}

	var reaped []int32
	for _, p := range procs {
		if p.Pid == currentPid {
			continue
		}
		cmdline, err := p.Cmdline()
		if err != nil || cmdline == "" {
			continue
		}
		if !strings.Contains(cmdline, segDirMarker) {
			continue
		}
		_ = p.Terminate()
		reaped = append(reaped, p.Pid)
	}

	if len(reaped) == 0 {
		return nil
	}

	time.Sleep(2 * time.Second)
	for _, p := range procs {
		for _, pid := range reaped {
			if p.Pid != pid {
				continue
			}
			if running, _ := p.IsRunning(); running {
				_ = p.Kill()
			}
		}
	}
	return reaped
}
