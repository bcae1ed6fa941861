// Command feedcollector ingests third-party phishing feeds from MQTT into
// url_blacklist.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phishing-detection-api/config"
	"phishing-detection-api/metrics"
	"phishing-detection-api/models"
	"phishing-detection-api/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FeedMessage is one feed report.
type FeedMessage struct {
	URL        string   `json:"url"`
	Confidence *float64 `json:"confidence"`
	IsPhishing *bool    `json:"is_phishing"`
	Source     string   `json:"source"`
}

// feedEntry is a validated FeedMessage ready to store.
type feedEntry struct {
	URL        string
	Domain     string
	IsPhishing bool
	Confidence float64
	Source     string
	ReceivedAt time.Time
}

var (
	msgsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_feedcollector_messages_received_total",
		Help: "Total number of feed messages received.",
	})
	msgsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_feedcollector_messages_stored_total",
		Help: "Total number of feed entries upserted into url_blacklist.",
	})
	msgsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_feedcollector_messages_failed_total",
		Help: "Total number of feed messages rejected or failed to store.",
	})
)

type store interface {
	Upsert(ctx context.Context, e feedEntry) error
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

type collector struct {
	store store
	pub   publisher
	now   func() time.Time
}

func main() {
	if err := run(); err != nil {
		slog.Error("feed collector stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("db pool init: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, feed entries will not be published", "error", err)
	}
	defer cache.Close()

	go func() {
		if err := metrics.Serve(ctx, cfg.Workers.MetricsAddr); err != nil {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	c := &collector{store: &pgStore{pool: pool}, pub: cache, now: time.Now}
	topic := cfg.Workers.FeedTopic

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Workers.MQTTURL)
	opts.SetClientID("phishguard-feeds-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		c.processMessage(ctx, message.Topic(), message.Payload())
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(topic, 1, nil)
		token.Wait()
		if token.Error() != nil {
			slog.Error("mqtt subscribe failed", "topic", topic, "error", token.Error())
			return
		}
		slog.Info("subscribed", "topic", topic)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	slog.Info("feed collector running", "mqtt", cfg.Workers.MQTTURL, "metrics", cfg.Workers.MetricsAddr)

	<-ctx.Done()
	slog.Info("feed collector shutting down")
	client.Disconnect(250)
	return nil
}

// parseFeedMessage validates a payload. Missing fields default to a
// phishing report with full confidence from an external feed.
func parseFeedMessage(payload []byte, now time.Time) (feedEntry, error) {
	var msg FeedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return feedEntry{}, fmt.Errorf("invalid payload: %w", err)
	}
	if err := services.ValidateURL(msg.URL); err != nil {
		return feedEntry{}, err
	}

	e := feedEntry{
		URL:        msg.URL,
		Domain:     services.RegistrableDomain(msg.URL),
		IsPhishing: true,
		Confidence: 1,
		Source:     models.SourceExternalAPI,
		ReceivedAt: now.UTC(),
	}
	if msg.IsPhishing != nil {
		e.IsPhishing = *msg.IsPhishing
	}
	if msg.Confidence != nil {
		if *msg.Confidence < 0 || *msg.Confidence > 1 {
			return feedEntry{}, services.ErrInvalidScore
		}
		e.Confidence = *msg.Confidence
	}
	if msg.Source != "" {
		e.Source = msg.Source
	}
	return e, nil
}

func (c *collector) processMessage(ctx context.Context, topic string, payload []byte) bool {
	msgsReceived.Inc()

	entry, err := parseFeedMessage(payload, c.now())
	if err != nil {
		msgsFailed.Inc()
		slog.Warn("rejected feed message", "topic", topic, "error", err)
		return false
	}

	if err := c.store.Upsert(ctx, entry); err != nil {
		msgsFailed.Inc()
		slog.Error("store feed entry failed", "url", entry.URL, "error", err)
		return false
	}
	msgsStored.Inc()

	if c.pub != nil {
		err := c.pub.Publish(ctx, services.ChannelBlacklist, services.BlacklistEvent{
			Action:     "upsert",
			URL:        entry.URL,
			Domain:     entry.Domain,
			IsPhishing: entry.IsPhishing,
			Source:     entry.Source,
			Timestamp:  entry.ReceivedAt,
		})
		if err != nil {
			slog.Warn("publish feed entry failed", "error", err)
		}
	}
	return true
}
