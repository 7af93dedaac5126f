package mqtt

import "fmt"

// Topic prefixes for the Hearth MQTT scheme.
//
// All topics use the flat scheme: hearth/{category}/{integration}/{id}
const (
	// TopicPrefix is the base for all Hearth topics.
	TopicPrefix = "hearth"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hearth/system"
)

// Topics provides builders for Hearth MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.EntityState("sysmon", "sensor-host")
//	// Returns: "hearth/state/sysmon/sensor-host"
type Topics struct{}

// EntityState returns the topic Hearth publishes canonical entity state to.
//
// Example: hearth/state/sysmon/sensor-host
func (Topics) EntityState(integration, entityID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, integration, entityID)
}

// EntityCommand returns the topic commands for an entity are published to.
// Integrations that control hardware over MQTT subscribe here.
//
// Example: hearth/command/mqtt_sensor/relay-garage
func (Topics) EntityCommand(integration, entityID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, integration, entityID)
}

// EntityAvailability returns the topic for entity availability changes.
//
// Example: hearth/availability/sysmon/sensor-host
func (Topics) EntityAvailability(integration, entityID string) string {
	return fmt.Sprintf("%s/availability/%s/%s", TopicPrefix, integration, entityID)
}

// Event returns the topic for system events.
//
// Example: hearth/event/integration_ready
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}

// SystemStatus returns the system status topic.
// Hearth publishes online/offline payloads here, including its Last Will.
//
// Example: hearth/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEntityStates returns a pattern matching all canonical entity states.
//
// Pattern: hearth/state/+/+
func (Topics) AllEntityStates() string {
	return fmt.Sprintf("%s/state/+/+", TopicPrefix)
}

// AllEntityCommands returns a pattern matching all entity commands.
//
// Pattern: hearth/command/+/+
func (Topics) AllEntityCommands() string {
	return fmt.Sprintf("%s/command/+/+", TopicPrefix)
}

// AllTopics returns a pattern matching all Hearth topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: hearth/#
func (Topics) AllTopics() string {
	return "hearth/#"
}
