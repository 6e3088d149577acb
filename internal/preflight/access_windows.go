//go:build windows

package preflight

import "os"

// accessReadWrite probes writability by creating and removing a scratch
// file. Windows has no Access syscall and evaluating ACLs directly is
// unreliable on network shares.
func accessReadWrite(path string) error {
	probe, err := os.CreateTemp(path, ".shapes-access-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
