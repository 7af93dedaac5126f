package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Publisher is the interface for publishing commands to integration
// bridges over MQTT.
type Publisher interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// RefreshRequester triggers a refresh of an integration's coordinator.
// Implemented by integration.Manager.
type RefreshRequester interface {
	RequestRefresh(ctx context.Context, integrationID string) error
}

// TopicBuilder returns the MQTT topic commands for an entity are
// published to. Satisfied by mqtt.Topics{}.EntityCommand, which owns
// the topic scheme.
type TopicBuilder func(integrationID, entityID string) string

// Commander executes mutating commands against entities.
//
// It implements the explicit command-then-publish pattern: a command is
// validated against the entity's capability set, published over MQTT, and
// only after the publish succeeds is the owning coordinator's refresh path
// triggered so every subscriber re-renders from confirmed state. There is
// no implicit "refresh after every method" wrapping.
type Commander struct {
	registry  *Registry
	publisher Publisher
	refresher RefreshRequester
	topic     TopicBuilder
	qos       byte
	logger    Logger
}

// NewCommander creates a commander.
//
// topic must not be nil; pass mqtt.Topics{}.EntityCommand.
// publisher may be nil (commands then fail with ErrPublisherUnavailable);
// refresher may be nil for deployments without poll-back confirmation.
func NewCommander(registry *Registry, publisher Publisher, refresher RefreshRequester, topic TopicBuilder, qos byte) *Commander {
	return &Commander{
		registry:  registry,
		publisher: publisher,
		refresher: refresher,
		topic:     topic,
		qos:       qos,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the commander.
func (c *Commander) SetLogger(logger Logger) {
	c.logger = logger
}

// commandCapabilities maps commands to the capability that permits them.
var commandCapabilities = map[string]Capability{
	"turn_on":      CapOnOff,
	"turn_off":     CapOnOff,
	"set_level":    CapDim,
	"set_position": CapPosition,
}

// Execute runs a command against an entity.
//
// Flow: capability check, MQTT publish to the integration's command topic,
// then an explicit coordinator refresh so state converges on what the
// device actually did.
//
// Returns the generated command ID for tracking.
func (c *Commander) Execute(ctx context.Context, entityID, command string, params map[string]any) (string, error) {
	if c.publisher == nil {
		return "", ErrPublisherUnavailable
	}

	e, err := c.registry.Get(entityID)
	if err != nil {
		return "", err
	}

	if required, known := commandCapabilities[command]; known && !e.HasCapability(required) {
		return "", fmt.Errorf("%w: %q requires capability %q", ErrCommandNotSupported, command, required)
	}

	commandID := uuid.NewString()
	if params == nil {
		params = make(map[string]any)
	}

	payload, err := json.Marshal(map[string]any{
		"id":         commandID,
		"entity_id":  entityID,
		"command":    command,
		"parameters": params,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling command: %w", err)
	}

	topic := c.topic(e.IntegrationID, entityID)
	if err := c.publisher.Publish(topic, payload, c.qos, false); err != nil {
		return "", fmt.Errorf("publishing to %q: %w", topic, err)
	}

	c.logger.Debug("command published",
		"entity", entityID,
		"command", command,
		"command_id", commandID,
		"topic", topic,
	)

	// Command succeeded: explicitly pull fresh state through the
	// coordinator so all listeners observe the confirmed outcome.
	if c.refresher != nil {
		if err := c.refresher.RequestRefresh(ctx, e.IntegrationID); err != nil {
			c.logger.Warn("post-command refresh failed",
				"entity", entityID,
				"integration", e.IntegrationID,
				"error", err,
			)
		}
	}

	return commandID, nil
}
