// Package mqtt publishes the clock's synchronization status to an MQTT
// broker.
package mqtt

import (
	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

// quiesce is the number of milliseconds to wait for existing work to
// be completed on disconnect.
const quiesce = 250

// Handler wraps the broker connection.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service: sending a Message here publishes it.
	C chan Message
}

// Message is one MQTT publish.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New builds a Handler with an unbuffered service channel.
func New() *Handler {
	return &Handler{
		C: make(chan Message),
	}
}

// Connect connects to broker. An empty broker address disables
// publishing entirely.
func (m *Handler) Connect(broker string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().AddBroker(broker)
	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the configured broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect ends the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Service drains C and publishes each message. Messages are dropped
// silently if no broker or topic is configured.
func (m *Handler) Service() {
	for d := range m.C {
		if m.handler == nil || d.Topic == "" {
			continue
		}

		go func(msg Message) {
			if !m.handler.IsConnected() {
				debug.DebugLog.Printf("mqtt broker isn't connected, reconnecting")

				if err := m.ReConnect(); err != nil {
					debug.ErrorLog.Printf("can't reconnect to mqtt broker: %v", err)
					return
				}
			}

			debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
			t := m.handler.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

			go func() {
				<-t.Done()
				if err := t.Error(); err != nil {
					debug.ErrorLog.Printf("publishing topic %v: %v", msg.Topic, err)
				}
			}()
		}(d)
	}
}
