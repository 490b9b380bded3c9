// internal/ingest/mqtt/bridge.go
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"epos-bridge/internal/bridge"
	"epos-bridge/internal/config"
	"epos-bridge/internal/events"
	"epos-bridge/internal/model"
	"epos-bridge/internal/service"
	"epos-bridge/internal/utils"
)

const inboxSize = 256

// EventSource hands out printer event feeds
type EventSource interface {
	Subscribe(printerID string) *events.Subscription
	Unsubscribe(sub *events.Subscription)
}

// Publisher sends one MQTT message
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Result is published for every inbound batch
type Result struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	PrinterID string          `json:"printer_id"`
	Job       *model.PrintJob `json:"job,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type message struct {
	topic   string
	payload []byte
}

// Bridge accepts command batches from an MQTT broker and publishes job
// results and printer events back
type Bridge struct {
	cfg    *config.MQTTConfig
	jobs   service.PrintSubmitter
	events EventSource
	inbox  chan message
	logger *utils.ServiceLogger
}

// NewBridge creates an MQTT bridge. events may be nil to skip event
// publishing.
func NewBridge(cfg *config.MQTTConfig, jobs service.PrintSubmitter, eventSource EventSource, logger *zap.Logger) *Bridge {
	return &Bridge{
		cfg:    cfg,
		jobs:   jobs,
		events: eventSource,
		inbox:  make(chan message, inboxSize),
		logger: utils.NewServiceLogger(logger, "mqtt-bridge"),
	}
}

// Run connects to the broker and serves until ctx is done. autopaho
// reconnects on its own; the subscription is renewed on every connect.
func (b *Bridge) Run(ctx context.Context) error {
	brokerURL, err := url.Parse(b.cfg.BrokerURL)
	if err != nil {
		return fmt.Errorf("invalid mqtt broker url: %w", err)
	}

	filter := JobsFilter(b.cfg.TopicPrefix)
	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       b.cfg.KeepAlive,
		ConnectTimeout:  b.cfg.Timeout,
		ConnectUsername: b.cfg.Username,
		ConnectPassword: []byte(b.cfg.Password),
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			b.logger.Info("MQTT connection established", zap.String("broker", b.cfg.BrokerURL))
			subCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
			defer cancel()
			if _, err := cm.Subscribe(subCtx, &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{
					{Topic: filter, QoS: b.cfg.QoS},
				},
			}); err != nil {
				b.logger.Error("Failed to subscribe", zap.String("topic", filter), zap.Error(err))
				return
			}
			b.logger.Info("Subscribed to job topic", zap.String("topic", filter))
		},
		OnConnectError: func(err error) {
			b.logger.Warn("MQTT connection failed, retrying", zap.Error(err))
		},
		ClientConfig: paho.ClientConfig{
			ClientID: b.cfg.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				b.receive,
			},
			OnClientError: func(err error) {
				b.logger.Error("MQTT client error", zap.Error(err))
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				b.logger.Warn("MQTT server requested disconnect", zap.Uint8("reason_code", d.ReasonCode))
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("failed to start mqtt connection: %w", err)
	}
	pub := &connectionPublisher{cm: cm, qos: b.cfg.QoS, timeout: b.cfg.Timeout}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.consume(gctx, pub)
		return nil
	})
	if b.events != nil {
		g.Go(func() error {
			b.forwardEvents(gctx, pub)
			return nil
		})
	}

	err = g.Wait()

	disconnectCtx, cancel := context.WithTimeout(context.Background(), b.cfg.Timeout)
	defer cancel()
	if derr := cm.Disconnect(disconnectCtx); derr != nil {
		b.logger.Warn("MQTT disconnect failed", zap.Error(derr))
	}
	b.logger.Info("MQTT bridge stopped")
	return err
}

// receive runs on the paho reader goroutine and must not block on jobs
func (b *Bridge) receive(p paho.PublishReceived) (bool, error) {
	msg := message{topic: p.Packet.Topic, payload: p.Packet.Payload}
	select {
	case b.inbox <- msg:
	default:
		b.logger.Warn("MQTT inbox full, dropping batch", zap.String("topic", msg.topic))
	}
	return true, nil
}

// consume handles inbound batches one at a time, in arrival order
func (b *Bridge) consume(ctx context.Context, pub Publisher) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.inbox:
			b.HandleMessage(ctx, pub, msg.topic, msg.payload)
		}
	}
}

// HandleMessage runs one batch received on topic and publishes the result
func (b *Bridge) HandleMessage(ctx context.Context, pub Publisher, topic string, payload []byte) {
	printerID, ok := PrinterFromJobTopic(b.cfg.TopicPrefix, topic)
	if !ok {
		b.logger.Debug("Ignoring message on unexpected topic", zap.String("topic", topic))
		return
	}

	result := &Result{
		Type:      "job_result",
		PrinterID: printerID,
		Timestamp: time.Now(),
	}

	batch, err := bridge.DecodeBatch(payload)
	if err != nil {
		result.Type = "error"
		result.Error = err.Error()
		b.publishResult(ctx, pub, result)
		return
	}
	result.RequestID = batch.RequestID

	job, err := b.jobs.Submit(ctx, printerID, batch, model.JobSourceMQTT)
	result.Job = job
	if err != nil {
		result.Error = err.Error()
		if job == nil {
			result.Type = "error"
		}
	}
	result.Timestamp = time.Now()
	b.publishResult(ctx, pub, result)
}

func (b *Bridge) publishResult(ctx context.Context, pub Publisher, result *Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		b.logger.Error("Failed to marshal result", zap.Error(err))
		return
	}

	topic := ResultTopic(b.cfg.TopicPrefix, result.PrinterID)
	if err := pub.Publish(ctx, topic, payload); err != nil {
		b.logger.Error("Failed to publish result",
			zap.String("topic", topic),
			zap.String("request_id", result.RequestID),
			zap.Error(err),
		)
	}
}

// forwardEvents republishes every printer event on the printer's event topic
func (b *Bridge) forwardEvents(ctx context.Context, pub Publisher) {
	sub := b.events.Subscribe(events.AllPrinters)
	defer b.events.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				b.logger.Error("Failed to marshal event", zap.Error(err))
				continue
			}
			if err := pub.Publish(ctx, EventTopic(b.cfg.TopicPrefix, event.PrinterID), payload); err != nil {
				b.logger.Warn("Failed to publish event",
					zap.String("printer_id", event.PrinterID),
					zap.Error(err),
				)
			}
		}
	}
}

// connectionPublisher publishes through an autopaho connection
type connectionPublisher struct {
	cm      *autopaho.ConnectionManager
	qos     byte
	timeout time.Duration
}

func (p *connectionPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     p.qos,
		Payload: payload,
	})
	return err
}
