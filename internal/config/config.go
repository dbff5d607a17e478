package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Имена очередей конвейера.
const (
	// QueueIngestDone — очередь стадии merger: события о готовых
	// выгрузках CTI-документов.
	QueueIngestDone = "data.ingest.done"

	// QueueHistoryGraphDone — очередь стадии analyzer: события о готовом
	// графе истории, после которых запускается анализ уязвимостей.
	QueueHistoryGraphDone = "history.graph.done"
)

// Broker — параметры подключения к RabbitMQ.
type Broker struct {
	// Host — хост брокера. Env: RABBITMQ_HOST (default: "rabbitmq").
	Host string

	// Port — порт брокера. Env: RABBITMQ_PORT (default: 5672).
	Port int

	// User — пользователь. Env: RABBITMQ_USER (default: "root").
	User string

	// Pass — пароль. Env: RABBITMQ_PASS (default: "toor").
	Pass string

	// Queue — имя потребляемой очереди. Env: RABBITMQ_QUEUE.
	Queue string

	// Prefetch — лимит неподтверждённых сообщений на consumer.
	Prefetch int

	// RetryDelay — фиксированная пауза перед переподключением.
	// Env: RETRY_DELAY_SEC (default: 5s).
	RetryDelay time.Duration
}

// URL собирает AMQP URL из параметров.
func (b Broker) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		url.QueryEscape(b.User), url.QueryEscape(b.Pass), b.Host, b.Port)
}

// Merger — конфигурация стадии merger (параллельный пул).
type Merger struct {
	Broker Broker

	// OutDir — входная директория с JSON-документами.
	// Env: OUT_DIR (default: "/app/out").
	OutDir string

	// PendingDir — директория для объединённого файла.
	// Env: PENDING_DIR (default: "/app/pending").
	PendingDir string

	// MaxWorkers — размер пула воркеров и prefetch брокера.
	// Env: MAX_WORKERS (default: 4).
	MaxWorkers int

	// IngestCmd — команда downstream-ингеста, получает путь к
	// объединённому файлу аргументом. Env: INGEST_CMD (default: пусто —
	// шаг ингеста пропускается).
	IngestCmd string

	// APIPort — порт status API. Env: API_PORT (default: 8200).
	APIPort int
}

// Analyzer — конфигурация стадии analyzer (последовательная очередь).
type Analyzer struct {
	Broker Broker

	// OutDir — входная директория с артефактами для анализа.
	// Env: OUT_DIR (default: "/app/out").
	OutDir string

	// TempDir — директория для staged-копий артефактов.
	// Env: TEMP_DIR (default: "/app/temp").
	TempDir string

	// RemoteURL — базовый URL внешнего сервиса анализа.
	// Env: ANALYZER_URL (default: "http://analyzer:8000").
	RemoteURL string

	// PollTimeout — максимальное время ожидания удалённой задачи.
	// Env: POLL_TIMEOUT_SEC (default: 1h).
	PollTimeout time.Duration

	// PollInterval — пауза между опросами статуса.
	// Env: POLL_INTERVAL_SEC (default: 30s).
	PollInterval time.Duration

	// APIPort — порт status API. Env: API_PORT (default: 8300).
	APIPort int
}

// MergerFromEnv читает конфигурацию стадии merger из окружения.
func MergerFromEnv() Merger {
	maxWorkers := envInt("MAX_WORKERS", 4)
	return Merger{
		Broker:     brokerFromEnv(QueueIngestDone, maxWorkers),
		OutDir:     envString("OUT_DIR", "/app/out"),
		PendingDir: envString("PENDING_DIR", "/app/pending"),
		MaxWorkers: maxWorkers,
		IngestCmd:  envString("INGEST_CMD", ""),
		APIPort:    envInt("API_PORT", 8200),
	}
}

// AnalyzerFromEnv читает конфигурацию стадии analyzer из окружения.
func AnalyzerFromEnv() Analyzer {
	return Analyzer{
		Broker:       brokerFromEnv(QueueHistoryGraphDone, 1),
		OutDir:       envString("OUT_DIR", "/app/out"),
		TempDir:      envString("TEMP_DIR", "/app/temp"),
		RemoteURL:    envString("ANALYZER_URL", "http://analyzer:8000"),
		PollTimeout:  envSeconds("POLL_TIMEOUT_SEC", time.Hour),
		PollInterval: envSeconds("POLL_INTERVAL_SEC", 30*time.Second),
		APIPort:      envInt("API_PORT", 8300),
	}
}

// brokerFromEnv читает общие параметры брокера.
func brokerFromEnv(defaultQueue string, prefetch int) Broker {
	return Broker{
		Host:       envString("RABBITMQ_HOST", "rabbitmq"),
		Port:       envInt("RABBITMQ_PORT", 5672),
		User:       envString("RABBITMQ_USER", "root"),
		Pass:       envString("RABBITMQ_PASS", "toor"),
		Queue:      envString("RABBITMQ_QUEUE", defaultQueue),
		Prefetch:   prefetch,
		RetryDelay: envSeconds("RETRY_DELAY_SEC", 5*time.Second),
	}
}

// envString читает строковую переменную окружения с default значением.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envInt читает целочисленную переменную окружения с default значением.
func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

// envSeconds читает переменную окружения в секундах с default значением.
func envSeconds(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Second
}
