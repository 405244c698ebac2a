package deployer

import (
	"errors"
	"fmt"

	"btsbridge/types"
)

var (
	ErrInvalidConfig   = errors.New("invalid bridge configuration")
	ErrCoreNotDeployed = errors.New("core contract is not deployed")
)

// IncompleteDeploymentError is returned when both proxies exist but the
// periphery could not be linked to the core. The bridge is unusable in this state.
type IncompleteDeploymentError struct {
	Record *types.DeploymentRecord
	Err    error
}

func (e *IncompleteDeploymentError) Error() string {
	return fmt.Sprintf(
		"deployment on %s incomplete: core %s and periphery %s deployed but not linked: %s",
		e.Record.Network,
		e.Record.CoreAddress,
		e.Record.PeripheryAddress,
		e.Err,
	)
}

func (e *IncompleteDeploymentError) Unwrap() error {
	return e.Err
}
