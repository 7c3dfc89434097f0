package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
)

const summaryHeader = "\n\n📋 Advice Summary:\n"

// Broadcaster sends every hazard alert to every registered farmer by SMS.
type Broadcaster struct {
	directory   domain.FarmerDirectory
	sender      domain.SMSSender
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewBroadcaster creates a Broadcaster that runs at most concurrency sends at
// once.
func NewBroadcaster(directory domain.FarmerDirectory, sender domain.SMSSender, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Broadcaster {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Broadcaster{
		directory:   directory,
		sender:      sender,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// Broadcast attempts one send per (farmer, alert) pair and returns how many
// succeeded. Failures are logged and counted, never returned.
func (b *Broadcaster) Broadcast(ctx context.Context, alerts []domain.HazardAlert, summary string) int {
	if len(alerts) == 0 {
		return 0
	}

	farmers, err := b.directory.RegisteredFarmers(ctx)
	if err != nil {
		b.metrics.FarmerDirectoryUp.Set(0)
		b.logger.Error("farmer lookup failed, skipping broadcast", "error", err)
		return 0
	}
	b.metrics.FarmerDirectoryUp.Set(1)
	if len(farmers) == 0 {
		b.logger.Info("no registered farmers to notify")
		return 0
	}

	messages := make([]string, len(alerts))
	for i, a := range alerts {
		messages[i] = composeMessage(a, summary)
	}

	var delivered atomic.Int64
	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for _, farmer := range farmers {
		for i, msg := range messages {
			g.Go(func() error {
				if err := b.sender.Send(ctx, farmer.PhoneNumber, msg); err != nil {
					b.metrics.SMSSends.WithLabelValues("failed").Inc()
					b.logger.Warn("sms send failed",
						"phone", maskPhone(farmer.PhoneNumber),
						"alert_kind", alerts[i].Kind,
						"error", err,
					)
					return nil
				}
				b.metrics.SMSSends.WithLabelValues("sent").Inc()
				delivered.Add(1)
				return nil
			})
		}
	}
	_ = g.Wait()

	n := int(delivered.Load())
	b.logger.Info("broadcast complete",
		"farmers", len(farmers),
		"alerts", len(alerts),
		"attempted", len(farmers)*len(alerts),
		"delivered", n,
	)
	return n
}

func composeMessage(alert domain.HazardAlert, summary string) string {
	if summary == "" {
		return alert.Description
	}
	return alert.Description + summaryHeader + summary
}

// maskPhone keeps the last four digits for logs.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
