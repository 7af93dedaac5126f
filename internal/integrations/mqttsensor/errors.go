package mqttsensor

import "errors"

var (
	// ErrNoSensors indicates the integration was configured without sensors.
	ErrNoSensors = errors.New("mqttsensor: no sensors configured")

	// ErrBadPayload indicates a sensor published something other than a
	// JSON object.
	ErrBadPayload = errors.New("mqttsensor: malformed payload")
)
