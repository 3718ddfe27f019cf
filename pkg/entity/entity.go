// pkg/entity/entity.go
package entity

import (
	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
	"github.com/opd-ai/go-armada/pkg/pool"
)

// ID is a unique identifier for an entity
type ID uint64

// Entity is the base interface for all simulated objects
type Entity interface {
	GetID() ID
	GetBody() *physics.Body
}

// Simulatable is anything advanced by the per-tick loop. dt is milliseconds.
type Simulatable interface {
	Simulate(dt float64)
}

// Damageable is implemented by objects that can take projectile damage.
// Damage is applied through this interface only; projectiles never mutate a
// target's internals directly.
type Damageable interface {
	Entity
	ApplyDamage(amount float64, hitPoint physics.Vector3D)
}

// SpatialIndex supplies hit-test candidates inside an axis-aligned volume.
// The octree in pkg/physics satisfies it; tests substitute fixed lists.
type SpatialIndex interface {
	GetObjects(xMin, xMax, yMin, yMax, zMin, zMax float64) []interface{}
}

// Env aggregates the shared battle services entities use: the startup
// constants, the projectile and explosion arenas, and the event bus. One Env
// per battle, passed by reference into every constructor.
type Env struct {
	Params      *config.SimulationConfig
	Projectiles *pool.Arena[*Projectile]
	Explosions  *pool.Arena[*Explosion]
	Events      *event.Bus

	// QueryPadding widens projectile sweep queries so targets whose centers
	// sit just outside the swept box are still considered. Set to the
	// largest hull radius in the battle.
	QueryPadding float64
}

// GenerateID generates a unique ID for entities
var nextID ID = 1

func GenerateID() ID {
	id := nextID
	nextID++
	return id
}
