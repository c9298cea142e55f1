package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mgwoorl/coursework/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var (
	// ErrNotConnected is returned by PublishSnapshot while the broker link is down.
	ErrNotConnected = errors.New("mqtt client not connected")
	// ErrStopped is returned by Connect once Disconnect has been called.
	ErrStopped = errors.New("publisher stopped")
)

const publishTimeout = 5 * time.Second

// Publisher mirrors encoded snapshots to a single MQTT topic.
type Publisher struct {
	client    mqtt.Client
	topic     string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	published atomic.Uint64

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		topic:  cfg.MQTTTopic,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort, "topic", p.topic)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the initial broker connection. It returns early when ctx
// is done or Disconnect is called; paho keeps retrying in the background.
func (p *Publisher) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}

	if p.IsConnected() {
		return nil
	}

	// With ConnectRetry(true) the token only completes once a broker answers,
	// so the wait below is the only thing bounding this call.
	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnectHandler flips connected.
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return ErrStopped
		default:
		}
	}
}

// ConnectAsync runs Connect on its own goroutine so an absent broker never
// holds back the datagram loop. Snapshots published before the link is up
// fail with ErrNotConnected. The returned channel yields Connect's result
// and is then closed.
func (p *Publisher) ConnectAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := p.Connect(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, ErrStopped) {
			p.logger.Warn("mqtt connect failed, mirror stays offline", "topic", p.topic, "error", err)
		}
		done <- err
	}()
	return done
}

// PublishSnapshot publishes one encoded snapshot with QoS 0, not retained.
func (p *Publisher) PublishSnapshot(payload []byte) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	n := p.published.Add(1)
	p.logger.Debug("published snapshot", "topic", p.topic, "bytes", len(payload), "published", n)
	return nil
}

// Published returns how many snapshots reached the broker.
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

// IsConnected reports whether both our handler state and paho agree the link
// is up.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher. Safe to call more than once; after it,
// Connect returns ErrStopped.
func (p *Publisher) Disconnect() {
	// Unblocks a pending Connect wait.
	p.stopOnce.Do(func() { close(p.stopCh) })

	// Paho quiesces in-flight publishes for up to 250ms.
	if p.client != nil {
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	p.logger.Info("mqtt mirror stopped", "topic", p.topic, "published", p.published.Load())
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
