//go:build !unix

package mcp

import "os"

func protocolStdout() (*os.File, error) {
	return os.Stdout, nil
}
