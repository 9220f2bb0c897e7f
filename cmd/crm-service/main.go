package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/app"
)

const (
	envHTTPAddr          = "CRM_HTTP_ADDR"
	envMetricsAddr       = "CRM_METRICS_ADDR"
	envPostgresDSN       = "CRM_POSTGRES_DSN"
	envKafkaBrokers      = "KAFKA_BROKERS"
	envHeartbeatEnabled  = "CRM_HEARTBEAT_ENABLED"
	envHeartbeatInterval = "CRM_HEARTBEAT_INTERVAL"
	envHeartbeatLogFile  = "CRM_HEARTBEAT_LOG_FILE"
)

// envLookup абстрагирует os.LookupEnv для тестируемости чтения конфигурации.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения из переменных
// окружения. Некорректные значения не валят запуск: остаётся значение по
// умолчанию, а проблема возвращается предупреждением.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envHTTPAddr); ok && strings.TrimSpace(v) != "" {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envMetricsAddr); ok && strings.TrimSpace(v) != "" {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envPostgresDSN); ok {
		cfg.PostgresDSN = strings.TrimSpace(v)
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}
	if v, ok := lookup(envHeartbeatEnabled); ok {
		enabled, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envHeartbeatEnabled, err))
		} else {
			cfg.HeartbeatEnabled = enabled
		}
	}
	if v, ok := lookup(envHeartbeatInterval); ok {
		interval, err := time.ParseDuration(strings.TrimSpace(v))
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: %v", envHeartbeatInterval, err))
		case interval <= 0:
			warnings = append(warnings, fmt.Sprintf("%s: must be positive", envHeartbeatInterval))
		default:
			cfg.HeartbeatInterval = interval
		}
	}
	if v, ok := lookup(envHeartbeatLogFile); ok && strings.TrimSpace(v) != "" {
		cfg.HeartbeatLogFile = strings.TrimSpace(v)
	}

	return cfg, warnings
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"postgres":     cfg.PostgresDSN != "",
		"kafka":        cfg.KafkaBrokers != "",
		"heartbeat":    cfg.HeartbeatEnabled,
	}).Info("запускаем CRM-сервис")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("CRM-сервис остановлен")
}
