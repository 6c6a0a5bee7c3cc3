//go:build linux

package platform

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futexWait is a thin wrapper over the Linux FUTEX_WAIT syscall, grounded
// on golang.org/x/sys/unix.Futex. addr must be 32-bit aligned memory; we
// address the low word of the int64 counter value, which is sufficient
// since the futex only ever compares for inequality against a recently
// observed snapshot, not the full 64-bit value.
func futexWait(addr *int64, expected int64, timeout time.Duration) {
	w := (*uint32)(unsafe.Pointer(addr))
	exp := uint32(expected)
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	_, _ = unix.Futex(w, unix.FUTEX_WAIT, exp, &ts, nil, 0)
}

func futexWakeAll(addr *int64) {
	w := (*uint32)(unsafe.Pointer(addr))
	_, _ = unix.Futex(w, unix.FUTEX_WAKE, 1<<30, nil, nil, 0)
}

func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

func setThreadName(name string) error {
	if len(name) > 15 {
		name = name[:15] // PR_SET_NAME caps at TASK_COMM_LEN-1
	}
	buf := append([]byte(name), 0)
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0)
}
