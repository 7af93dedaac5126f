package mqtt

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/hearthhome/hearth-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Tests require a running Mosquitto broker at 127.0.0.1:1883.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "hearth-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// requireBroker skips the test if no broker is listening on the test address.
func requireBroker(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 500*time.Millisecond)
	if err != nil {
		t.Skipf("skipping: no MQTT broker at 127.0.0.1:1883 (%v)", err)
	}
	conn.Close() //nolint:errcheck // Probe connection
}

// connectTestClient connects to the local broker, skipping when absent,
// and closes the client when the test finishes.
func connectTestClient(t *testing.T) *Client {
	t.Helper()
	requireBroker(t)

	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup

	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := connectTestClient(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestConnectInvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999 // Nothing listening here

	_, err := Connect(cfg)
	if err == nil {
		t.Fatal("Connect() expected error for invalid broker")
	}

	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClose(t *testing.T) {
	client := connectTestClient(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

// =============================================================================
// HealthCheck Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	client := connectTestClient(t)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := client.HealthCheck(ctx); err == nil {
			t.Error("HealthCheck() = nil, want error for cancelled context")
		}
	})
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := connectTestClient(t)
	client.Close() //nolint:errcheck // Deliberate early close

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestPublish(t *testing.T) {
	client := connectTestClient(t)

	commandTopic := Topics{}.EntityCommand("test-integration", "test-entity")
	stateTopic := Topics{}.EntityState("test-integration", "test-entity")

	tests := []struct {
		name string
		op   func() error
	}{
		{"bytes", func() error { return client.Publish(commandTopic, []byte(`{"test":true}`), 1, false) }},
		{"string", func() error { return client.PublishString(commandTopic, `{"test":true}`, 1, false) }},
		{"retained", func() error { return client.PublishRetained(stateTopic, []byte(`{"on":true}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); err != nil {
				t.Errorf("publish error = %v", err)
			}
		})
	}
}

// TestArgumentValidation covers the input checks shared by Publish,
// Subscribe, and Unsubscribe on a live connection.
func TestArgumentValidation(t *testing.T) {
	client := connectTestClient(t)
	nop := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"publish empty topic", func() error { return client.Publish("", []byte("x"), 1, false) }, ErrInvalidTopic},
		{"publish qos out of range", func() error { return client.Publish("hearth/test", []byte("x"), 3, false) }, ErrInvalidQoS},
		{"subscribe empty topic", func() error { return client.Subscribe("", 1, nop) }, ErrInvalidTopic},
		{"subscribe qos out of range", func() error { return client.Subscribe("hearth/test", 3, nop) }, ErrInvalidQoS},
		{"subscribe nil handler", func() error { return client.Subscribe("hearth/test", 1, nil) }, ErrSubscribeFailed},
		{"unsubscribe empty topic", func() error { return client.Unsubscribe("") }, ErrInvalidTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestOperationsAfterClose verifies every operation reports
// ErrNotConnected once the client has been shut down.
func TestOperationsAfterClose(t *testing.T) {
	client := connectTestClient(t)
	client.Close() //nolint:errcheck // Deliberate early close

	nop := func(string, []byte) error { return nil }
	tests := []struct {
		name string
		op   func() error
	}{
		{"publish", func() error { return client.Publish("hearth/test", []byte("x"), 1, false) }},
		{"subscribe", func() error { return client.Subscribe("hearth/test", 1, nop) }},
		{"unsubscribe", func() error { return client.Unsubscribe("hearth/test") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, ErrNotConnected) {
				t.Errorf("error = %v, want ErrNotConnected", err)
			}
		})
	}
}

// =============================================================================
// Subscribe Tests
// =============================================================================

func TestSubscribe(t *testing.T) {
	client := connectTestClient(t)

	topic := "hearth/test/subscribe"
	if err := client.Subscribe(topic, 1, func(string, []byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if !client.HasSubscription(topic) {
		t.Error("HasSubscription() = false, want true")
	}
	if got := client.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", got)
	}
}

// =============================================================================
// Unsubscribe Tests
// =============================================================================

func TestUnsubscribe(t *testing.T) {
	client := connectTestClient(t)

	topic := "hearth/test/unsubscribe"
	if err := client.Subscribe(topic, 1, func(string, []byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}

	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe(), want false")
	}
	if got := client.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
}

// =============================================================================
// Publish-Subscribe Roundtrip Tests
// =============================================================================

func TestPublishSubscribeRoundtrip(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()
	cfg.Broker.ClientID = "hearth-test-pub"

	pubClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	// Create subscriber with different client ID
	cfg.Broker.ClientID = "hearth-test-sub"
	subClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	// Set up subscription
	topic := "hearth/test/roundtrip"
	expectedPayload := `{"test":"roundtrip"}`
	received := make(chan string, 1)

	err = subClient.Subscribe(topic, 1, func(t string, payload []byte) error {
		received <- string(payload)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// Give subscription time to register
	time.Sleep(100 * time.Millisecond)

	// Publish
	err = pubClient.PublishString(topic, expectedPayload, 1, false)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// Wait for message
	select {
	case payload := <-received:
		if payload != expectedPayload {
			t.Errorf("Received payload = %q, want %q", payload, expectedPayload)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for message")
	}
}

func TestWildcardSubscription(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()
	cfg.Broker.ClientID = "hearth-test-wild-pub"

	pubClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.Broker.ClientID = "hearth-test-wild-sub"
	subClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	// Subscribe to wildcard pattern
	pattern := "hearth/test/+/state"
	var receivedMu sync.Mutex
	receivedTopics := make(map[string]bool)

	err = subClient.Subscribe(pattern, 1, func(topic string, payload []byte) error {
		receivedMu.Lock()
		receivedTopics[topic] = true
		receivedMu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// Publish to multiple matching topics
	topics := []string{
		"hearth/test/sensor1/state",
		"hearth/test/sensor2/state",
		"hearth/test/sensor3/state",
	}

	for _, topic := range topics {
		err = pubClient.PublishString(topic, `{"on":true}`, 1, false)
		if err != nil {
			t.Fatalf("Publish(%s) error = %v", topic, err)
		}
	}

	// Wait for messages
	time.Sleep(500 * time.Millisecond)

	receivedMu.Lock()
	defer receivedMu.Unlock()

	for _, topic := range topics {
		if !receivedTopics[topic] {
			t.Errorf("Did not receive message for topic %s", topic)
		}
	}
}

// =============================================================================
// Callback Tests
// =============================================================================

func TestOnConnectCallback(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()
	cfg.Broker.ClientID = "hearth-test-callback"

	// Connect first, then set callback.
	// Note: The callback may or may not fire depending on timing - the paho
	// library's on-connect handler fires asynchronously and might race with
	// our SetOnConnect call. This is expected behaviour - the callback mechanism
	// is for reconnection notifications primarily.
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	// Use a channel to track callback invocation (inherently race-safe)
	called := make(chan struct{}, 1)
	client.SetOnConnect(func() {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	// Brief wait to see if callback fires - either outcome is valid
	// since we set the callback after Connect() returned.
	select {
	case <-called:
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOnDisconnectCallback(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()
	cfg.Broker.ClientID = "hearth-test-disconnect-cb"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	disconnectCalled := make(chan bool, 1)
	client.SetOnDisconnect(func(err error) {
		disconnectCalled <- true
	})

	// Graceful close does not trigger the disconnect handler, so we only
	// verify the callback can be set without racing the connection state.
	client.Close()
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "EntityState",
			builder: func() string {
				return Topics{}.EntityState("sysmon", "sensor-host")
			},
			expected: "hearth/state/sysmon/sensor-host",
		},
		{
			name: "EntityCommand",
			builder: func() string {
				return Topics{}.EntityCommand("mqtt_sensor", "relay-garage")
			},
			expected: "hearth/command/mqtt_sensor/relay-garage",
		},
		{
			name: "EntityAvailability",
			builder: func() string {
				return Topics{}.EntityAvailability("sysmon", "sensor-host")
			},
			expected: "hearth/availability/sysmon/sensor-host",
		},
		{
			name: "Event",
			builder: func() string {
				return Topics{}.Event("integration_ready")
			},
			expected: "hearth/event/integration_ready",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "hearth/system/status",
		},
		{
			name: "AllEntityStates",
			builder: func() string {
				return Topics{}.AllEntityStates()
			},
			expected: "hearth/state/+/+",
		},
		{
			name: "AllEntityCommands",
			builder: func() string {
				return Topics{}.AllEntityCommands()
			},
			expected: "hearth/command/+/+",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "hearth/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

// =============================================================================
// Edge Case Tests
// =============================================================================

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}

func TestMultipleSubscriptions(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topics := []string{
		"hearth/test/topic1",
		"hearth/test/topic2",
		"hearth/test/topic3",
	}

	handler := func(string, []byte) error { return nil }

	for _, topic := range topics {
		err := client.Subscribe(topic, 1, handler)
		if err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}

	if client.SubscriptionCount() != 3 {
		t.Errorf("SubscriptionCount() = %d, want 3", client.SubscriptionCount())
	}

	for _, topic := range topics {
		if !client.HasSubscription(topic) {
			t.Errorf("HasSubscription(%s) = false, want true", topic)
		}
	}
}

func TestPublishNilPayload(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	err = client.Publish("test/topic", nil, 1, false)
	if err != nil {
		t.Errorf("Publish() with nil payload error = %v", err)
	}
}

func TestHandlerReturnsError(t *testing.T) {
	requireBroker(t)
	cfg := testConfig()
	cfg.Broker.ClientID = "hearth-test-handler-err"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := "hearth/test/handler-error"
	handlerCalled := make(chan struct{}, 1)

	err = client.Subscribe(topic, 1, func(t string, p []byte) error {
		handlerCalled <- struct{}{}
		return errors.New("handler error")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	err = client.PublishString(topic, "test", 1, false)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-handlerCalled:
	case <-time.After(2 * time.Second):
		t.Error("Handler was not called")
	}
}
