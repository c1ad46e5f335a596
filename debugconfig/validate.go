package debugconfig

import "fmt"

// PortInUseError reports a debug port requested by more than one function.
type PortInUseError struct {
	Port int
}

func (e *PortInUseError) Error() string {
	return fmt.Sprintf("debug port %d is already in use", e.Port)
}

// validationState tracks the ports claimed during a single validation pass.
// It is owned by exactly one Validate call and discarded afterwards.
type validationState struct {
	portsUsed map[int]struct{}
}

// Validate checks the cross-entry invariants of a bound configuration: no
// two functions may claim the same debug port. It assumes the keys were
// already qualified during binding and fails on the first violation.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	state := validationState{portsUsed: make(map[int]struct{}, len(cfg.Functions))}
	for _, fc := range cfg.Functions {
		if fc.DebugPort == nil {
			continue
		}
		port := *fc.DebugPort
		if _, used := state.portsUsed[port]; used {
			return &PortInUseError{Port: port}
		}
		state.portsUsed[port] = struct{}{}
	}
	return nil
}
