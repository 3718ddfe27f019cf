// pkg/engine/battle_test.go
package engine

import (
	"testing"

	"github.com/opd-ai/go-armada/pkg/ai"
	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
)

func newTestBattle(t *testing.T) *Battle {
	t.Helper()
	b, err := NewBattle(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewBattle() error: %v", err)
	}
	return b
}

// facing returns an orientation looking along the given horizontal direction
func facing(direction physics.Vector3D) physics.Basis {
	basis := physics.IdentityBasis()
	if direction.Z < 0 {
		return basis.Yaw(3.14159265358979)
	}
	return basis
}

func TestNewBattle(t *testing.T) {
	b := newTestBattle(t)

	if len(b.Teams) != 2 {
		t.Errorf("teams = %d, want 2", len(b.Teams))
	}
	if b.WinningTeam != -1 {
		t.Errorf("winning team = %d, want -1 before the fight", b.WinningTeam)
	}
	if b.Env.Projectiles.Capacity() != b.Config.ProjectilePoolSize {
		t.Errorf("projectile pool = %d, want %d", b.Env.Projectiles.Capacity(), b.Config.ProjectilePoolSize)
	}
	// Query padding covers the largest hull in the class set
	if b.Env.QueryPadding != 12 {
		t.Errorf("query padding = %v, want 12", b.Env.QueryPadding)
	}
}

func TestNewBattleRejectsBrokenConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SpacecraftClasses[0].Propulsion = "missingDrive"
	if _, err := NewBattle(cfg); err == nil {
		t.Error("battle created from config with a dangling propulsion reference")
	}
}

func TestSpawnSpacecraft(t *testing.T) {
	b := newTestBattle(t)

	craft, err := b.SpawnSpacecraft("falcon", 0, physics.Vector3D{}, physics.IdentityBasis())
	if err != nil {
		t.Fatalf("SpawnSpacecraft() error: %v", err)
	}
	if b.Teams[0].CraftCount != 1 {
		t.Errorf("team craft count = %d, want 1", b.Teams[0].CraftCount)
	}
	if len(craft.Weapons()) != 3 {
		t.Errorf("falcon weapons = %d, want 3", len(craft.Weapons()))
	}

	if _, err := b.SpawnSpacecraft("battlestar", 0, physics.Vector3D{}, physics.IdentityBasis()); err == nil {
		t.Error("spawn of unknown class succeeded")
	}
	if _, err := b.SpawnSpacecraft("falcon", 9, physics.Vector3D{}, physics.IdentityBasis()); err == nil {
		t.Error("spawn on unknown team succeeded")
	}
}

func TestNearestEnemy(t *testing.T) {
	b := newTestBattle(t)
	us, _ := b.SpawnSpacecraft("falcon", 0, physics.Vector3D{}, physics.IdentityBasis())
	friend, _ := b.SpawnSpacecraft("falcon", 0, physics.Vector3D{X: 10}, physics.IdentityBasis())
	far, _ := b.SpawnSpacecraft("falcon", 1, physics.Vector3D{X: 500}, physics.IdentityBasis())
	near, _ := b.SpawnSpacecraft("falcon", 1, physics.Vector3D{X: 100}, physics.IdentityBasis())

	if got := b.NearestEnemy(us); got != near {
		t.Errorf("nearest enemy = %v, want the craft 100 m out", got.GetID())
	}
	_ = friend

	// A dead enemy is no contact
	near.ApplyDamage(1e6, physics.Vector3D{})
	if got := b.NearestEnemy(us); got != far {
		t.Errorf("nearest living enemy = %v, want the far craft", got.GetID())
	}
}

func TestUpdateAdvancesTicks(t *testing.T) {
	b := newTestBattle(t)
	craft, _ := b.SpawnSpacecraft("falcon", 0, physics.Vector3D{}, physics.IdentityBasis())
	// An opponent keeps the elimination check from ending the fight
	_, _ = b.SpawnSpacecraft("falcon", 1, physics.Vector3D{X: 2000}, physics.IdentityBasis())
	b.Start()

	craft.Maneuvering().Forward()
	b.Update(50)
	b.Update(50)

	if b.CurrentTick != 2 {
		t.Errorf("tick = %d, want 2", b.CurrentTick)
	}
	if b.Status != BattleStatusActive {
		t.Fatalf("status = %v, want still active", b.Status)
	}
	if b.ElapsedTime != 100 {
		t.Errorf("elapsed = %v ms, want 100", b.ElapsedTime)
	}
	if craft.GetBody().Velocity.Z <= 0 {
		t.Error("craft did not accelerate from its command")
	}

	// Oversized dt is capped, not integrated
	b.Update(5000)
	if b.ElapsedTime != 200 {
		t.Errorf("elapsed after capped tick = %v ms, want 200", b.ElapsedTime)
	}
}

func TestEliminationWin(t *testing.T) {
	b := newTestBattle(t)
	_, _ = b.SpawnSpacecraft("falcon", 0, physics.Vector3D{}, physics.IdentityBasis())
	doomed, _ := b.SpawnSpacecraft("falcon", 1, physics.Vector3D{X: 300}, physics.IdentityBasis())
	b.Start()

	ended := 0
	b.EventBus.Subscribe(event.BattleEnded, func(e event.Event) {
		ended++
	})

	doomed.ApplyDamage(1e6, physics.Vector3D{})
	b.Update(50)

	if b.Status != BattleStatusEnded {
		t.Fatalf("status = %v, want ended", b.Status)
	}
	if b.WinningTeam != 0 {
		t.Errorf("winning team = %d, want 0", b.WinningTeam)
	}
	if ended != 1 {
		t.Errorf("battle ended events = %d, want 1", ended)
	}
	if b.Teams[1].CraftCount != 0 {
		t.Errorf("losing team craft count = %d, want 0", b.Teams[1].CraftCount)
	}
}

type instantWin struct {
	winner int
}

func (w *instantWin) CheckWinner(b *Battle) (int, bool) {
	return w.winner, true
}

func TestCustomWinCondition(t *testing.T) {
	b := newTestBattle(t)
	b.CustomWinCondition = &instantWin{winner: 1}
	b.Start()

	b.Update(50)
	if b.Status != BattleStatusEnded {
		t.Fatalf("status = %v, want ended", b.Status)
	}
	if b.WinningTeam != 1 {
		t.Errorf("winning team = %d, want 1", b.WinningTeam)
	}
}

// A full engagement: an AI fighter against a drifting target. The fighter
// must close in, shoot and win on its own.
func TestFighterDefeatsDrone(t *testing.T) {
	b := newTestBattle(t)
	hunter, _ := b.SpawnSpacecraft("falcon", 0, physics.Vector3D{}, physics.IdentityBasis())
	drone, _ := b.SpawnSpacecraft("falcon", 1, physics.Vector3D{Z: 800}, facing(physics.Vector3D{Z: -1}))
	b.AttachController(ai.NewFighterController(hunter, b))
	b.Start()

	hits := 0
	b.EventBus.Subscribe(event.ProjectileHit, func(e event.Event) {
		hits++
	})

	for i := 0; i < 2000 && b.Status == BattleStatusActive; i++ {
		b.Update(20)
	}

	if hits == 0 {
		t.Fatal("no projectile hits in the whole engagement")
	}
	if drone.Alive() {
		t.Errorf("drone survived with hull %v after %d hits", drone.Hull(), hits)
	}
	if b.Status != BattleStatusEnded || b.WinningTeam != 0 {
		t.Errorf("status %v winner %d, want ended with team 0", b.Status, b.WinningTeam)
	}
	if !hunter.Alive() {
		t.Error("hunter died shooting an unarmed drift target")
	}
	if b.Teams[0].Kills != 1 {
		t.Errorf("team 0 kills = %d, want 1", b.Teams[0].Kills)
	}
}

func TestLivingCrafts(t *testing.T) {
	b := newTestBattle(t)
	a, _ := b.SpawnSpacecraft("falcon", 0, physics.Vector3D{}, physics.IdentityBasis())
	dead, _ := b.SpawnSpacecraft("falcon", 1, physics.Vector3D{X: 100}, physics.IdentityBasis())
	dead.ApplyDamage(1e6, physics.Vector3D{})

	living := b.LivingCrafts()
	if len(living) != 1 || living[0] != a {
		t.Errorf("living crafts = %d, want only the survivor", len(living))
	}
}

func TestSpawnTeams(t *testing.T) {
	b := newTestBattle(t)
	b.Config.Teams[0].Spacecraft = 3
	crafts, err := b.SpawnTeams()
	if err != nil {
		t.Fatalf("SpawnTeams() error: %v", err)
	}
	if len(crafts) != 4 {
		t.Fatalf("spawned %d crafts, want 4", len(crafts))
	}
	if b.Teams[0].CraftCount != 3 || b.Teams[1].CraftCount != 1 {
		t.Errorf("craft counts = %d/%d, want 3/1", b.Teams[0].CraftCount, b.Teams[1].CraftCount)
	}

	// Every craft starts on the spawn ring facing roughly toward the origin.
	for _, craft := range crafts {
		body := craft.GetBody()
		toCenter := body.Position.Neg().Normalize()
		if body.Orientation.Forward.Dot(toCenter) < 0.9 {
			t.Errorf("craft at %v faces %v, want toward center", body.Position, body.Orientation.Forward)
		}
	}

	// Teammates must not spawn on top of each other.
	team0 := crafts[:3]
	for i := range team0 {
		for j := i + 1; j < len(team0); j++ {
			d := team0[i].GetBody().Position.Distance(team0[j].GetBody().Position)
			if d < team0[i].Class().HullRadius*2 {
				t.Errorf("teammates %d and %d overlap, %f m apart", i, j, d)
			}
		}
	}
}

func TestSpawnTeamsUnknownClass(t *testing.T) {
	b := newTestBattle(t)
	b.Config.Teams[1].SpacecraftClass = "ghost"
	if _, err := b.SpawnTeams(); err == nil {
		t.Error("expected error for unknown team class")
	}
}
