// Package notify delivers alarm events to subscribed clients over MQTT. The
// browser/companion clients subscribe to the alarm topics and render the ring
// banner, play vibration and raise the OS notification locally.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/model"
)

const (
	topicRing      = "layl/alarms/ring"
	topicDismissed = "layl/alarms/dismissed"
)

// MQTT connection handler
var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

// MQTT connection lost handler
var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// MQTTNotifier publishes alarm lifecycle events.
type MQTTNotifier struct {
	client mqtt.Client
}

// NewMQTTNotifier connects to the broker. A failed connection is an error at
// startup; once connected, the paho client reconnects on its own.
func NewMQTTNotifier(brokerURL, clientID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}
	return &MQTTNotifier{client: client}, nil
}

// ringEvent is the wire shape for a firing alarm. RequireInteraction tells
// clients the notification must be explicitly dismissed, never auto-closed.
type ringEvent struct {
	AlarmID            string `json:"alarm_id"`
	Name               string `json:"name"`
	Sound              string `json:"sound"`
	Vibrate            bool   `json:"vibrate"`
	RequireInteraction bool   `json:"require_interaction"`
	FiredAt            string `json:"fired_at"`
}

func (n *MQTTNotifier) AlarmRing(a model.Alarm, vibrate bool) {
	payload, err := json.Marshal(ringEvent{
		AlarmID:            a.ID,
		Name:               a.Name,
		Sound:              string(a.Sound),
		Vibrate:            vibrate,
		RequireInteraction: true,
		FiredAt:            time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal ring event")
		return
	}
	n.publish(topicRing, payload)
}

func (n *MQTTNotifier) AlarmDismissed(alarmID string) {
	payload, _ := json.Marshal(map[string]string{"alarm_id": alarmID})
	n.publish(topicDismissed, payload)
}

// publish is fire-and-forget: a notification that cannot be delivered must
// never block or fail the alarm that triggered it.
func (n *MQTTNotifier) publish(topic string, payload []byte) {
	token := n.client.Publish(topic, 1, false, payload)
	go func() {
		token.Wait()
		if token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", topic).Msg("failed to publish alarm event")
		}
	}()
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
	log.Info().Msg("MQTT notifier disconnected")
}

// NoopNotifier drops all events; used when no broker is configured and in
// tests.
type NoopNotifier struct{}

func (NoopNotifier) AlarmRing(model.Alarm, bool) {}
func (NoopNotifier) AlarmDismissed(string)       {}
