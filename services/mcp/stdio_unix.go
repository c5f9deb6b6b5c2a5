//go:build unix

package mcp

import (
	"os"

	"golang.org/x/sys/unix"
)

// protocolStdout hands the real stdout to the protocol and points fd 1 at
// stderr so log lines cannot interleave with protocol frames.
func protocolStdout() (*os.File, error) {
	fd, err := unix.Dup(int(os.Stdout.Fd()))
	if err != nil {
		return nil, err
	}
	if err := unix.Dup2(int(os.Stderr.Fd()), int(os.Stdout.Fd())); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), "mcp-stdout"), nil
}
