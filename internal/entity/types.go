package entity

import "time"

// Capability describes something an entity can sense or do. Entities carry
// an explicit capability set; all dispatch happens on these values rather
// than on concrete Go types.
type Capability string

// Known capabilities.
const (
	CapTemperature Capability = "temperature"
	CapHumidity    Capability = "humidity"
	CapIlluminance Capability = "illuminance"
	CapPower       Capability = "power"
	CapBattery     Capability = "battery"
	CapOnOff       Capability = "on_off"
	CapDim         Capability = "dim"
	CapPosition    Capability = "position"
	CapDiagnostic  Capability = "diagnostic"
)

// validCapabilities is the closed set accepted by ValidateCapability.
var validCapabilities = map[Capability]struct{}{
	CapTemperature: {},
	CapHumidity:    {},
	CapIlluminance: {},
	CapPower:       {},
	CapBattery:     {},
	CapOnOff:       {},
	CapDim:         {},
	CapPosition:    {},
	CapDiagnostic:  {},
}

// ValidateCapability checks that a capability value is recognised.
func ValidateCapability(c Capability) error {
	if _, ok := validCapabilities[c]; !ok {
		return ErrInvalidCapability
	}
	return nil
}

// State is the entity state snapshot, a JSON-compatible map.
// Example: {"value": 21.5, "unit": "°C"}
type State map[string]any

// State history source values.
const (
	StateSourcePoll    = "poll"
	StateSourcePush    = "push"
	StateSourceCommand = "command"
)

// Entity represents one consumer-facing value or control surface exposed by
// an integration instance.
type Entity struct {
	// ID is the unique entity identifier.
	ID string `json:"id"`
	// Name is the human-facing label.
	Name string `json:"name"`
	// IntegrationID ties the entity to its owning integration instance.
	IntegrationID string `json:"integration_id"`
	// Capabilities is the explicit capability set used for dispatch.
	Capabilities []Capability `json:"capabilities"`

	// State is the current state snapshot. Replaced wholesale on change,
	// never edited in place.
	State State `json:"state"`
	// StateUpdatedAt is when State was last replaced (UTC).
	StateUpdatedAt *time.Time `json:"state_updated_at,omitempty"`

	// Available mirrors the owning coordinator's LastUpdateSuccess. An
	// unavailable entity keeps its last good State for diagnostics.
	Available bool `json:"available"`

	// CreatedAt is when the entity was registered (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// HasCapability reports whether the entity carries the given capability.
func (e *Entity) HasCapability(c Capability) bool {
	for _, cap := range e.Capabilities {
		if cap == c {
			return true
		}
	}
	return false
}

// DeepCopy creates a complete independent copy of the Entity.
// Map and slice fields are cloned so modifications to the copy do not
// affect the original. Essential for cache isolation.
func (e *Entity) DeepCopy() *Entity {
	if e == nil {
		return nil
	}

	cpy := *e

	cpy.State = deepCopyState(e.State)
	if e.Capabilities != nil {
		cpy.Capabilities = make([]Capability, len(e.Capabilities))
		copy(cpy.Capabilities, e.Capabilities)
	}

	return &cpy
}

// deepCopyState creates a deep copy of a State map.
func deepCopyState(s State) State {
	if s == nil {
		return nil
	}
	cpy := make(State, len(s))
	for k, v := range s {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		cpy := make(map[string]any, len(val))
		for k, inner := range val {
			cpy[k] = deepCopyValue(inner)
		}
		return cpy
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives are safe to copy by value.
		return v
	}
}

// ValidateEntity checks required fields and capability values.
func ValidateEntity(e *Entity) error {
	if e == nil {
		return ErrInvalidEntity
	}
	if e.ID == "" || e.Name == "" || e.IntegrationID == "" {
		return ErrInvalidEntity
	}
	if len(e.Capabilities) == 0 {
		return ErrInvalidEntity
	}
	for _, c := range e.Capabilities {
		if err := ValidateCapability(c); err != nil {
			return err
		}
	}
	return nil
}
