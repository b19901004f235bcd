package utils

import (
	"golang.org/x/sys/unix"
)

// HostInfo identifies the machine a cycle was collected on.
type HostInfo struct {
	Hostname string
	Kernel   string
}

func GetHostInfo() HostInfo {
	return HostInfo{
		Hostname: GetHostname(),
		Kernel:   getKernelRelease(),
	}
}

func getKernelRelease() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uname.Release[:])
}
