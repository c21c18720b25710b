package runner

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another runner process is alive.
var ErrAlreadyRunning = errors.New("another runner is already running")

// ensureExclusive refuses to start while another process runs the same
// executable, since both would drive the same ports.
func ensureExclusive() error {
	self, err := ps.FindProcess(os.Getpid())
	if err != nil {
		return fmt.Errorf("inspect current process: %w", err)
	}

	if self == nil {
		return nil
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if rival, found := findRival(processList, self.Pid(), self.Executable()); found {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, rival.Pid())
	}

	return nil
}

// findRival returns a process other than self running executable.
func findRival(processList []ps.Process, self int, executable string) (ps.Process, bool) {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() == executable {
			return process, true
		}
	}

	return nil, false
}
