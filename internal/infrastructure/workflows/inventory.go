package workflows

import (
	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// StaticInventory reports a fixed fabric list, seeded from the server
// configuration. An empty list means every fabric-dependent workflow falls
// through to fabric creation without a clarification.
type StaticInventory struct {
	fabrics []domain.Fabric
}

// NewStaticInventory builds an inventory from configured fabrics.
func NewStaticInventory(fabrics []domain.Fabric) *StaticInventory {
	return &StaticInventory{fabrics: fabrics}
}

// Fabrics implements ports.Inventory.
func (s *StaticInventory) Fabrics(domain.ClusterConfig) []domain.Fabric {
	return append([]domain.Fabric(nil), s.fabrics...)
}

var _ ports.Inventory = (*StaticInventory)(nil)
