package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sacncore/internal/clock"
	"sacncore/internal/config"
	"sacncore/internal/enginepool"
	"sacncore/internal/eventbus"
	"sacncore/internal/fixturepatch"
	"sacncore/internal/led"
	"sacncore/internal/logger"
	"sacncore/internal/netsync"
	"sacncore/internal/sacntx"
	"sacncore/internal/scheduler"
	"sacncore/internal/sensorcache"
	"sacncore/internal/supervisor"
	"sacncore/internal/telemetry"
)

// tickPeriod is the Fixture Patch / render cadence (§4.6: "runs every
// 25ms").
const tickPeriod = 25 * time.Millisecond

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}
	log.With(logger.Fields{"module": "logger"}).Debug("newLogger created ok")

	store := config.NewStore()
	bus := eventbus.New(log)

	clk := clock.New(log, cfg.Device.Timezone)

	cache := sensorcache.New()
	sensorListener, err := sensorcache.NewListener(log, cache, bus, cfg.Sensor.Port)
	if err != nil {
		log.With(logger.Fields{"module": "sensorcache"}).Errorf("failed to start sensor listener: %v", err)
		os.Exit(1)
	}

	sched := scheduler.New(log, clk, store, cache, bus)
	pool := enginepool.New(log, time.Now().UnixNano())

	transmitter, err := sacntx.New(log, bus, cfg.SACN.BindCIDR, cfg.SACN.Universes)
	if err != nil {
		log.With(logger.Fields{"module": "sacntx"}).Errorf("failed to create sACN transmitter: %v", err)
		os.Exit(1)
	}

	patch := fixturepatch.New(log, store, sched, pool, transmitter, bus, cfg.SACN.Universes)

	var ledWriter led.Writer = led.NullWriter{}
	if cfg.Device.LEDPort != "" {
		sw, err := led.NewSerialWriter(cfg.Device.LEDPort)
		if err != nil {
			log.With(logger.Fields{"module": "led"}).Errorf("failed to open LED panel, falling back to null: %v", err)
		} else {
			ledWriter = sw
		}
	}

	super := supervisor.New(log, bus, ledWriter, transmitter)

	mqttPublisher := telemetry.New(log, telemetry.Conf{
		ClientID: cfg.MQTT.ClientID,
		Schema:   "tcp",
		Host:     cfg.MQTT.Host,
		Port:     cfg.MQTT.Port,
		User:     cfg.MQTT.User,
		Password: cfg.MQTT.Password,
		Qos:      cfg.MQTT.Qos,
	}, bus)

	syncPoller := netsync.New(log, netsync.Conf{
		Endpoint:     cfg.Sync.Endpoint,
		WebsocketURL: cfg.Sync.WebsocketURL,
	}, store, bus)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	stopSensor := make(chan struct{})
	go sensorListener.Run(stopSensor)

	sched.Start()
	transmitter.Start()
	super.Start()
	syncPoller.Start(ctx)

	if err := mqttPublisher.Start(ctx); err != nil {
		log.With(logger.Fields{"module": "telemetry"}).Errorf("failed to start MQTT publisher: %v", err)
	}

	stopTick := make(chan struct{})
	go func() {
		ticker := time.NewTicker(tickPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-stopTick:
				return
			case <-ticker.C:
				patch.Tick()
			}
		}
	}()

	<-ctx.Done()

	close(stopTick)

	if err := mqttPublisher.Stop(); err != nil {
		log.Error("failed to stop MQTT service:", err.Error())
	}
	syncPoller.Stop()
	super.Stop()
	transmitter.Stop()
	sched.Stop()
	close(stopSensor)
	sensorListener.Close()

	log.Info("shutdown complete")
}
