// Package bridge polls a GoGoGate2 controller and mirrors it onto MQTT:
// door state and temperature out, toggle commands in.
package bridge

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pcurrier/gogogate2/internal/gogogate"
)

const (
	defaultPollInterval = 30 * time.Second
	commandTimeout      = 15 * time.Second

	commandToggle = "toggle"
)

// Device is the slice of the device client the bridge needs.
type Device interface {
	Status(ctx context.Context) (gogogate.DoorStates, error)
	Temperatures(ctx context.Context) (gogogate.Temperatures, error)
	ToggleDoor(ctx context.Context, door int) error
}

// session abstracts the MQTT connection so tests can run without a broker.
type session interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, cb func(topic string, payload []byte)) error
	Close()
}

// Config defines the MQTT side of the bridge.
type Config struct {
	// Broker is the host:port of the MQTT broker.
	Broker   string
	Username string
	Password string
	TLS      bool
	// TopicPrefix defaults to "gogogate2". Topics are
	// {prefix}/door/{n}/state, {prefix}/door/{n}/temperature and
	// {prefix}/door/{n}/command.
	TopicPrefix string
	// PollInterval defaults to 30s.
	PollInterval time.Duration
}

type Bridge struct {
	device   Device
	session  session
	prefix   string
	interval time.Duration
	logger   *zap.Logger
}

// New connects to the broker and returns a bridge ready to Run.
func New(device Device, cfg Config, logger *zap.Logger) (*Bridge, error) {
	sess, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	return newBridge(device, sess, cfg, logger), nil
}

func newBridge(device Device, sess session, cfg Config, logger *zap.Logger) *Bridge {
	prefix := strings.Trim(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = "gogogate2"
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		device:   device,
		session:  sess,
		prefix:   prefix,
		interval: interval,
		logger:   logger,
	}
}

// Run subscribes to the command topic, publishes an initial snapshot, and
// then polls until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.session.Subscribe(b.prefix+"/door/+/command", b.handleCommand); err != nil {
		return err
	}

	b.pollOnce(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.session.Close()
			return ctx.Err()
		case <-ticker.C:
			b.pollOnce(ctx)
		}
	}
}

func (b *Bridge) pollOnce(ctx context.Context) {
	states, err := b.device.Status(ctx)
	if err != nil {
		b.logger.Warn("status poll failed", zap.Error(err))
		return
	}
	for i, state := range states {
		b.publish(b.doorTopic(i+1, "state"), state.String())
	}

	temps, err := b.device.Temperatures(ctx)
	if err != nil {
		b.logger.Warn("temperature poll failed", zap.Error(err))
		return
	}
	for i, fahrenheit := range temps {
		b.publish(b.doorTopic(i+1, "temperature"), strconv.FormatFloat(fahrenheit, 'f', 1, 64))
	}
}

func (b *Bridge) publish(topic, payload string) {
	if err := b.session.Publish(topic, []byte(payload)); err != nil {
		b.logger.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	door, ok := b.doorFromTopic(topic)
	if !ok {
		b.logger.Warn("command on unexpected topic", zap.String("topic", topic))
		return
	}
	if string(payload) != commandToggle {
		b.logger.Warn("unknown command",
			zap.String("topic", topic),
			zap.ByteString("payload", payload))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.device.ToggleDoor(ctx, door); err != nil {
		b.logger.Warn("toggle failed", zap.Int("door", door), zap.Error(err))
		return
	}
	b.logger.Info("door toggled", zap.Int("door", door))
}

func (b *Bridge) doorTopic(door int, leaf string) string {
	return b.prefix + "/door/" + strconv.Itoa(door) + "/" + leaf
}

func (b *Bridge) doorFromTopic(topic string) (int, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 || parts[len(parts)-3] != "door" || parts[len(parts)-1] != "command" {
		return 0, false
	}
	door, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, false
	}
	return door, true
}
