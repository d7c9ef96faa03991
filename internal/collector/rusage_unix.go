//go:build unix

package collector

import (
	"golang.org/x/sys/unix"
)

// cpuTimes reads CPU usage for this process and its children via getrusage.
func cpuTimes() (*CPUTimes, error) {
	var self, children unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &self); err != nil {
		return nil, err
	}
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &children); err != nil {
		return nil, err
	}
	return &CPUTimes{
		User:           timevalSeconds(self.Utime),
		System:         timevalSeconds(self.Stime),
		ChildrenUser:   timevalSeconds(children.Utime),
		ChildrenSystem: timevalSeconds(children.Stime),
	}, nil
}

func timevalSeconds(tv unix.Timeval) float64 {
	sec, nsec := tv.Unix()
	return float64(sec) + float64(nsec)/1e9
}
