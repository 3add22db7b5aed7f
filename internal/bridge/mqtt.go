package bridge

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttSession wraps a paho client behind the session interface. State and
// temperature messages are published retained so late subscribers see the
// last known values.
type mqttSession struct {
	client mqtt.Client

	mu   sync.Mutex
	subs map[string]func(topic string, payload []byte)
}

func connect(cfg Config) (*mqttSession, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}

	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s", scheme, cfg.Broker))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	sess := &mqttSession{subs: make(map[string]func(string, []byte))}
	opts.OnConnect = func(_ mqtt.Client) {
		sess.resubscribeAll()
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	sess.client = client
	return sess, nil
}

func (s *mqttSession) Publish(topic string, payload []byte) error {
	if token := s.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (s *mqttSession) Subscribe(topic string, cb func(topic string, payload []byte)) error {
	s.mu.Lock()
	s.subs[topic] = cb
	s.mu.Unlock()

	if token := s.client.Subscribe(topic, 0, s.wrap(cb)); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (s *mqttSession) Close() {
	s.client.Disconnect(250)
}

func (s *mqttSession) wrap(cb func(string, []byte)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		cb(msg.Topic(), msg.Payload())
	}
}

func (s *mqttSession) resubscribeAll() {
	if s.client == nil {
		return
	}
	s.mu.Lock()
	subs := make(map[string]func(string, []byte), len(s.subs))
	for topic, cb := range s.subs {
		subs[topic] = cb
	}
	s.mu.Unlock()
	for topic, cb := range subs {
		_ = s.client.Subscribe(topic, 0, s.wrap(cb)).Wait()
	}
}

func randomClientID() string {
	nonce := make([]byte, 8)
	_, _ = rand.Read(nonce)
	return "gogogate2-" + base64.RawURLEncoding.EncodeToString(nonce)
}
