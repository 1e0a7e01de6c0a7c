package perfserver

import (
	"github.com/shirou/gopsutil/process"
)

// collectorRunning reports whether a process named name is alive.
func collectorRunning(name string) (bool, error) {
	processes, err := process.Processes()
	if err != nil {
		return false, err
	}

	for _, proc := range processes {
		pname, err := proc.Name()
		if err == nil && pname == name {
			return true, nil
		}
	}
	return false, nil
}
