package handlers

import (
	"context"

	"btsbridge/operations"
	"btsbridge/registry"
	"btsbridge/types"
	"btsbridge/units"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Reader answers read-only contract queries.
type Reader interface {
	Balance(ctx context.Context, account common.Address) (units.Amount, error)
	TransferFee(ctx context.Context, amount units.Amount) (*operations.FeeBreakdown, error)
}

type Deployments interface {
	GetDeployment(network string) (*types.DeploymentRecord, error)
}

type Journal interface {
	FindAllOperationsByStatus(status string) ([]*types.OperationRecord, error)
}

type Pinger interface {
	Ping() error
}

// API serves the operator endpoints of one network. Deployments and
// Journal are optional, the endpoints backed by them answer 503 without.
type API struct {
	Network     string
	Registry    *registry.Registry
	Reader      Reader
	Deployments Deployments
	Journal     Journal
	Log         *zap.SugaredLogger
}
