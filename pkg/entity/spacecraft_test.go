// pkg/entity/spacecraft_test.go
package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-armada/pkg/audio"
	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
)

func testCraftClass() *SpacecraftClass {
	return &SpacecraftClass{
		Name:       "falcon",
		Mass:       1000,
		HullRadius: 10,
		MaxHull:    100,
		Armor:      5,
		Propulsion: testPropulsionClass(),
		WeaponSlots: []WeaponSlot{
			{Weapon: fixedGunClass(2), Position: physics.Vector3D{Z: 3}},
		},
	}
}

func newTestCraft(env *Env) *Spacecraft {
	return NewSpacecraft(testCraftClass(), 1, env, physics.Vector3D{}, physics.IdentityBasis(), nil, nil)
}

func TestNewSpacecraft(t *testing.T) {
	env := newTestEnv()

	var spawned uint64
	env.Events.Subscribe(event.SpacecraftSpawned, func(e event.Event) {
		spawned = e.(*event.SpacecraftEvent).SpacecraftID
	})

	s := newTestCraft(env)
	if !s.Alive() {
		t.Error("new craft not alive")
	}
	if s.Hull() != 100 {
		t.Errorf("hull = %v, want 100", s.Hull())
	}
	if len(s.Weapons()) != 1 {
		t.Errorf("weapon count = %d, want 1", len(s.Weapons()))
	}
	if spawned != uint64(s.GetID()) {
		t.Errorf("spawn event for craft %d, want %d", spawned, s.GetID())
	}
}

func TestSpacecraftUpdateMovesCraft(t *testing.T) {
	env := newTestEnv()
	s := newTestCraft(env)

	m := s.Maneuvering()
	for i := 0; i < 10; i++ {
		m.SetTickLength(100)
		m.Forward()
		s.Update(100)
	}

	if s.GetBody().Velocity.Z <= 0 {
		t.Errorf("forward speed = %v, want > 0 after sustained thrust", s.GetBody().Velocity.Z)
	}
}

func TestApplyDamageArmorReduction(t *testing.T) {
	env := newTestEnv()
	s := newTestCraft(env)

	// 5 armor absorbs 5 of every hit
	s.ApplyDamage(30, physics.Vector3D{})
	if got := s.Hull(); got != 75 {
		t.Errorf("hull = %v, want 75", got)
	}

	// A hit at or below the armor value does nothing
	s.ApplyDamage(5, physics.Vector3D{})
	s.ApplyDamage(3, physics.Vector3D{})
	if got := s.Hull(); got != 75 {
		t.Errorf("hull after absorbed hits = %v, want 75", got)
	}
}

func TestSpacecraftDestruction(t *testing.T) {
	env := newTestEnv()
	s := newTestCraft(env)

	destroyed := 0
	env.Events.Subscribe(event.SpacecraftDestroyed, func(e event.Event) {
		destroyed++
	})

	s.ApplyDamage(1000, physics.Vector3D{})
	if s.Alive() {
		t.Fatal("craft alive after lethal hit")
	}
	if s.Hull() != 0 {
		t.Errorf("hull = %v, want 0", s.Hull())
	}
	if destroyed != 1 {
		t.Errorf("destroyed events = %d, want 1", destroyed)
	}
	if got := env.Explosions.ActiveCount(); got != 1 {
		t.Errorf("explosions = %d, want 1", got)
	}

	// Damage to a wreck changes nothing
	s.ApplyDamage(50, physics.Vector3D{})
	if destroyed != 1 {
		t.Errorf("destroyed events after wreck hit = %d, want 1", destroyed)
	}
}

func TestDestroyedCraftStopsThrusting(t *testing.T) {
	env := newTestEnv()
	s := newTestCraft(env)
	s.GetBody().Velocity = physics.Vector3D{Z: 20}
	s.ApplyDamage(1000, physics.Vector3D{})

	m := s.Maneuvering()
	for i := 0; i < 5; i++ {
		m.SetTickLength(100)
		m.Forward()
		s.Update(100)
	}

	// The wreck drifts at its last velocity
	if got := s.GetBody().Velocity.Z; math.Abs(got-20) > 1e-9 {
		t.Errorf("wreck speed = %v, want unchanged 20", got)
	}
	if got := s.FireAll(false); got != 0 {
		t.Errorf("wreck fired %d projectiles", got)
	}
}

func TestChangeFlightModePublishesEvent(t *testing.T) {
	env := newTestEnv()
	s := newTestCraft(env)

	var mode string
	env.Events.Subscribe(event.FlightModeChanged, func(e event.Event) {
		mode = e.(*event.FlightModeEvent).Mode
	})

	if got := s.ChangeFlightMode(); got != FlightModeCompensated {
		t.Errorf("mode = %v, want compensated", got)
	}
	if mode != "compensated" {
		t.Errorf("event mode = %q, want compensated", mode)
	}
}

// The craft ticks its fire-sound stacker with simulation time, so shots
// separated by more than the stack window play at their own volume instead
// of stacking onto the previous one.
func TestUpdateAdvancesFireSoundWindow(t *testing.T) {
	env := newTestEnv()
	stacker := &audio.Stacker{StackTime: 100}
	s := NewSpacecraft(testCraftClass(), 1, env, physics.Vector3D{}, physics.IdentityBasis(), nil, stacker)

	stacker.Play(0.6)
	s.Update(150)

	if got := stacker.Play(0.6); got != 0.6 {
		t.Errorf("fire volume after the stack window = %v, want un-stacked 0.6", got)
	}
}

func TestFireAll(t *testing.T) {
	env := newTestEnv()
	s := newTestCraft(env)

	if got := s.FireAll(true); got != 2 {
		t.Errorf("fired = %d, want 2 from both barrels", got)
	}
	if got := s.FireAll(true); got != 0 {
		t.Errorf("fired during cooldown = %d, want 0", got)
	}

	s.Update(600)
	if got := s.FireAll(true); got != 2 {
		t.Errorf("fired after cooldown = %d, want 2", got)
	}
}
