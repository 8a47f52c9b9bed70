package interfaces

import (
	"context"

	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
)

// FixtureUseCase defines the fixture provisioning operation
type FixtureUseCase interface {
	// Provision downloads, decompresses and extracts an archive into the destination directory
	Provision(ctx context.Context, req *model.ProvisionRequest) (*model.ProvisionResult, error)
}
