package deps

import (
	"fmt"
	"os/exec"

	"github.com/arthurhrk/Shapeslibrary/internal/bridge"
)

// CheckRunner reports the script runner binary the bridge will invoke on the
// given platform.
//
// The bridge resolves its runner by bare name from PATH, so this check does
// exactly that rather than probing install locations; a runner that exists
// off PATH would fail at capture time all the same.
func CheckRunner(goos string) Status {
	const (
		name        = "Script runner"
		description = "Executes the capture and insert automation scripts"
	)

	runner := bridge.RunnerBinary(goos)
	if runner == "" {
		return Status{
			Name:        name,
			Description: description,
			Detail:      fmt.Sprintf("platform %q has no scripting bridge", goos),
		}
	}

	status := CheckBinaries([]Requirement{{
		Name:        name,
		Command:     runner,
		Description: description,
	}})[0]
	if !status.Available && goos == "windows" {
		if _, err := exec.LookPath("pwsh"); err == nil {
			status.Detail = fmt.Sprintf("binary %q not found (pwsh is present, but the bridge requires Windows PowerShell)", runner)
		}
	}
	return status
}
