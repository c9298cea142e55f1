package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// FeedHost and FeedPort name the datagram destination.
	FeedHost     string
	FeedPort     int
	FeedInterval time.Duration

	// HTTPAddr enables /healthz and /metrics when non-empty.
	HTTPAddr string

	// MQTTBroker enables the snapshot mirror when non-empty.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// FeedAddr returns the destination as host:port.
func (c Config) FeedAddr() string {
	return net.JoinHostPort(c.FeedHost, strconv.Itoa(c.FeedPort))
}

// MQTTEnabled reports whether snapshots are mirrored to a broker.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	feedHost := strings.TrimSpace(os.Getenv("FEED_HOST"))
	if feedHost == "" {
		feedHost = "127.0.0.1"
	}

	feedPort, err := parsePort("FEED_PORT", "6000")
	if err != nil {
		return Config{}, err
	}

	feedIntervalStr := strings.TrimSpace(os.Getenv("FEED_INTERVAL"))
	if feedIntervalStr == "" {
		feedIntervalStr = "2s"
	}
	feedInterval, err := time.ParseDuration(feedIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid FEED_INTERVAL %q: %w", feedIntervalStr, err)
	}
	if feedInterval <= 0 {
		return Config{}, fmt.Errorf("FEED_INTERVAL must be positive, got %v", feedInterval)
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPort, err := parsePort("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "towerfeed"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "towers/snapshot"
	}
	if strings.ContainsAny(mqttTopic, "+#") {
		return Config{}, fmt.Errorf("invalid MQTT_TOPIC %q: wildcards are not allowed when publishing", mqttTopic)
	}

	return Config{
		AppEnv:       appEnv,
		LogLevel:     level,
		FeedHost:     feedHost,
		FeedPort:     feedPort,
		FeedInterval: feedInterval,
		HTTPAddr:     httpAddr,
		MQTTBroker:   mqttBroker,
		MQTTPort:     mqttPort,
		MQTTClientID: mqttClientID,
		MQTTTopic:    mqttTopic,
	}, nil
}

func parsePort(key, def string) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		s = def
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s out of range: %d (must be 1-65535)", key, port)
	}
	return port, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
