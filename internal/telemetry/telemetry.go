// Package telemetry republishes senseData and moduleStatus events onto
// LAN-local MQTT topics for external dashboards, mirroring the
// teacher's DMX-command bridge but for outbound status instead of
// inbound commands.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"sacncore/internal/eventbus"
	"sacncore/internal/logger"
	"sacncore/internal/sensorcache"
)

// Conf configures the MQTT republish client.
type Conf struct {
	ClientID string
	Schema   string
	Host     string
	Port     string
	User     string
	Password string
	Qos      byte
}

// Publisher subscribes to the core's Event Bus and republishes
// selected topics onto MQTT.
type Publisher struct {
	ctx    context.Context
	log    logger.Logger
	cfg    Conf
	bus    *eventbus.Bus
	client mqtt.Client
	opts   *mqtt.ClientOptions

	unsubs []func()
}

// New builds a Publisher. Call Start to connect and begin republishing.
func New(log logger.Logger, cfg Conf, bus *eventbus.Bus) *Publisher {
	return &Publisher{log: log, cfg: cfg, bus: bus}
}

// Start connects to the broker and subscribes to the Event Bus.
func (p *Publisher) Start(ctx context.Context) error {
	if p.log.GetLevel() == "debug" {
		mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
		mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
		mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)
	}

	p.ctx = ctx
	p.opts = mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%s", p.cfg.Schema, p.cfg.Host, p.cfg.Port)).
		SetUsername(p.cfg.User).
		SetPassword(p.cfg.Password).
		SetOnConnectHandler(p.connectHandler).
		SetConnectionLostHandler(p.connectLostHandler).
		SetClientID(p.cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	p.client = mqtt.NewClient(p.opts)

	token := p.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-ctx.Done():
		return errors.New("context canceled")
	}

	p.log.With(logger.Fields{"module": "telemetry"}).Infof("status: %v", p.client.IsConnected())

	p.unsubs = append(p.unsubs,
		p.bus.Subscribe(eventbus.TopicSenseData, p.onSenseData),
		p.bus.Subscribe(eventbus.TopicModuleStatus, p.onModuleStatus),
	)
	return nil
}

// Stop disconnects from the broker and unsubscribes from the Event Bus.
func (p *Publisher) Stop() error {
	for _, unsub := range p.unsubs {
		unsub()
	}
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(500)
	}
	return nil
}

func (p *Publisher) onSenseData(e eventbus.Event) {
	id := "unknown"
	if sd, ok := e.Data.(sensorcache.SenseData); ok {
		id = fmt.Sprintf("%d", sd.ID)
	}
	p.publish(fmt.Sprintf("core/senseData/%s", id), e.Data)
}

func (p *Publisher) onModuleStatus(e eventbus.Event) {
	p.publish("core/moduleStatus", e.Data)
}

func (p *Publisher) publish(topic string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.With(logger.Fields{"module": "telemetry"}).Errorf("marshal for topic %s: %v", topic, err)
		return
	}
	token := p.client.Publish(topic, p.cfg.Qos, false, body)
	go func() {
		select {
		case <-p.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				p.log.With(logger.Fields{"module": "telemetry"}).Errorf("publish %s: %v", topic, token.Error())
			}
		}
	}()
}

func (p *Publisher) connectHandler(_ mqtt.Client) {
	p.log.With(logger.Fields{"module": "telemetry"}).Info("connected to broker")
}

func (p *Publisher) connectLostHandler(_ mqtt.Client, err error) {
	p.log.With(logger.Fields{"module": "telemetry"}).Errorf("broker connection lost: %v", err)
}
