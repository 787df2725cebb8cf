package mqtt

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// NewClient connects an MQTT client used to fan device commands out to the
// physical devices.
func NewClient(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}
