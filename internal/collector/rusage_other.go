//go:build !unix

package collector

import "errors"

func cpuTimes() (*CPUTimes, error) {
	return nil, errors.New("getrusage not supported on this platform")
}
