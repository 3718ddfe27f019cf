// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Common event types
const (
	SpacecraftSpawned   Type = "spacecraft_spawned"
	SpacecraftDestroyed Type = "spacecraft_destroyed"
	FlightModeChanged   Type = "flight_mode_changed"
	WeaponLocked        Type = "weapon_locked"
	ProjectileFired     Type = "projectile_fired"
	ProjectileHit       Type = "projectile_hit"
	BattleStarted       Type = "battle_started"
	BattleEnded         Type = "battle_ended"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Bus manages event subscriptions and dispatching. Handlers run synchronously
// on the publishing goroutine, inside the tick that produced the event.
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// SpacecraftEvent contains information about spacecraft lifecycle events
type SpacecraftEvent struct {
	BaseEvent
	SpacecraftID uint64
	TeamID       int
}

// NewSpacecraftEvent creates a new spacecraft event
func NewSpacecraftEvent(eventType Type, source interface{}, spacecraftID uint64, teamID int) *SpacecraftEvent {
	return &SpacecraftEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		SpacecraftID: spacecraftID,
		TeamID:       teamID,
	}
}

// FireEvent reports projectiles leaving a weapon's barrels
type FireEvent struct {
	BaseEvent
	SpacecraftID uint64
	WeaponName   string
	Projectiles  int
}

// NewFireEvent creates a new fire event
func NewFireEvent(source interface{}, spacecraftID uint64, weaponName string, projectiles int) *FireEvent {
	return &FireEvent{
		BaseEvent: BaseEvent{
			EventType: ProjectileFired,
			Source:    source,
		},
		SpacecraftID: spacecraftID,
		WeaponName:   weaponName,
		Projectiles:  projectiles,
	}
}

// HitEvent reports a projectile striking a hull
type HitEvent struct {
	BaseEvent
	OriginID uint64
	TargetID uint64
	Damage   float64
}

// NewHitEvent creates a new hit event
func NewHitEvent(source interface{}, originID, targetID uint64, damage float64) *HitEvent {
	return &HitEvent{
		BaseEvent: BaseEvent{
			EventType: ProjectileHit,
			Source:    source,
		},
		OriginID: originID,
		TargetID: targetID,
		Damage:   damage,
	}
}

// WeaponLockEvent reports a turret settling onto its target in range
type WeaponLockEvent struct {
	BaseEvent
	SpacecraftID uint64
	WeaponName   string
}

// NewWeaponLockEvent creates a new weapon lock event
func NewWeaponLockEvent(source interface{}, spacecraftID uint64, weaponName string) *WeaponLockEvent {
	return &WeaponLockEvent{
		BaseEvent: BaseEvent{
			EventType: WeaponLocked,
			Source:    source,
		},
		SpacecraftID: spacecraftID,
		WeaponName:   weaponName,
	}
}

// FlightModeEvent reports a maneuvering computer mode change
type FlightModeEvent struct {
	BaseEvent
	SpacecraftID uint64
	Mode         string
}

// NewFlightModeEvent creates a new flight mode event
func NewFlightModeEvent(source interface{}, spacecraftID uint64, mode string) *FlightModeEvent {
	return &FlightModeEvent{
		BaseEvent: BaseEvent{
			EventType: FlightModeChanged,
			Source:    source,
		},
		SpacecraftID: spacecraftID,
		Mode:         mode,
	}
}
