package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pcurrier/gogogate2/internal/gogogate"
)

type fakeDevice struct {
	mu      sync.Mutex
	states  gogogate.DoorStates
	temps   gogogate.Temperatures
	failed  bool
	toggled []int
}

func (d *fakeDevice) Status(context.Context) (gogogate.DoorStates, error) {
	if d.failed {
		return gogogate.DoorStates{}, errors.New("device unreachable")
	}
	return d.states, nil
}

func (d *fakeDevice) Temperatures(context.Context) (gogogate.Temperatures, error) {
	if d.failed {
		return gogogate.Temperatures{}, errors.New("device unreachable")
	}
	return d.temps, nil
}

func (d *fakeDevice) ToggleDoor(_ context.Context, door int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toggled = append(d.toggled, door)
	return nil
}

func (d *fakeDevice) toggles() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.toggled...)
}

type fakeSession struct {
	mu        sync.Mutex
	published map[string]string
	handlers  map[string]func(topic string, payload []byte)
	closed    bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		published: make(map[string]string),
		handlers:  make(map[string]func(string, []byte)),
	}
}

func (s *fakeSession) Publish(topic string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[topic] = string(payload)
	return nil
}

func (s *fakeSession) Subscribe(topic string, cb func(topic string, payload []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[topic] = cb
	return nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSession) message(t *testing.T, topic string, payload string) {
	t.Helper()
	s.mu.Lock()
	var handler func(string, []byte)
	for _, cb := range s.handlers {
		handler = cb
	}
	s.mu.Unlock()
	if handler == nil {
		t.Fatalf("no subscription registered")
	}
	handler(topic, []byte(payload))
}

func (s *fakeSession) get(topic string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.published[topic]
	return payload, ok
}

func newTestBridge(device Device, sess session) *Bridge {
	return newBridge(device, sess, Config{PollInterval: time.Hour}, nil)
}

func TestPollPublishesStateAndTemperature(t *testing.T) {
	device := &fakeDevice{
		states: gogogate.DoorStates{gogogate.DoorClosed, gogogate.DoorOpen, gogogate.DoorClosed},
		temps:  gogogate.Temperatures{0, 70.7, 212},
	}
	sess := newFakeSession()
	b := newTestBridge(device, sess)

	b.pollOnce(context.Background())

	wantPublished := map[string]string{
		"gogogate2/door/1/state":       "closed",
		"gogogate2/door/2/state":       "open",
		"gogogate2/door/3/state":       "closed",
		"gogogate2/door/1/temperature": "0.0",
		"gogogate2/door/2/temperature": "70.7",
		"gogogate2/door/3/temperature": "212.0",
	}
	for topic, want := range wantPublished {
		got, ok := sess.get(topic)
		if !ok {
			t.Fatalf("topic %s not published", topic)
		}
		if got != want {
			t.Errorf("topic %s = %q, want %q", topic, got, want)
		}
	}
}

func TestPollSkipsPublishOnDeviceFailure(t *testing.T) {
	device := &fakeDevice{failed: true}
	sess := newFakeSession()
	b := newTestBridge(device, sess)

	b.pollOnce(context.Background())

	if _, ok := sess.get("gogogate2/door/1/state"); ok {
		t.Fatalf("expected no publishes when the device is unreachable")
	}
}

func TestCommandDispatchesToggle(t *testing.T) {
	device := &fakeDevice{}
	sess := newFakeSession()
	b := newTestBridge(device, sess)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()

	// Wait for the subscription before injecting a message.
	deadline := time.After(2 * time.Second)
	for {
		sess.mu.Lock()
		subscribed := len(sess.handlers) > 0
		sess.mu.Unlock()
		if subscribed {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("bridge never subscribed")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	sess.message(t, "gogogate2/door/2/command", "toggle")
	sess.message(t, "gogogate2/door/2/command", "open-sesame") // ignored
	sess.message(t, "gogogate2/not-a-door", "toggle")          // ignored

	cancel()
	<-done

	if got := device.toggles(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("toggled doors = %v, want [2]", got)
	}
	if !sess.closed {
		t.Fatalf("session not closed on shutdown")
	}
}

func TestCustomTopicPrefix(t *testing.T) {
	device := &fakeDevice{states: gogogate.DoorStates{gogogate.DoorOpen, 0, 0}}
	sess := newFakeSession()
	b := newBridge(device, sess, Config{TopicPrefix: "home/garage/", PollInterval: time.Hour}, nil)

	b.pollOnce(context.Background())

	if _, ok := sess.get("home/garage/door/1/state"); !ok {
		t.Fatalf("expected prefix-trimmed topic to be used")
	}

	if door, ok := b.doorFromTopic("home/garage/door/3/command"); !ok || door != 3 {
		t.Fatalf("doorFromTopic = %d, %v", door, ok)
	}
	if _, ok := b.doorFromTopic("home/garage/door/x/command"); ok {
		t.Fatalf("non-numeric door accepted")
	}
}
