package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/metrics"
)

// Counter は件数を返すリポジトリ
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CountSource はゲージのラベルと件数取得元の組
type CountSource struct {
	Entity  string
	Counter Counter
}

// EntityGaugeCollector はエンティティ件数を定期的にゲージへ反映するワーカー
type EntityGaugeCollector struct {
	sources  []CountSource
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewEntityGaugeCollector は新しいコレクターを作成
func NewEntityGaugeCollector(m *metrics.Metrics, interval time.Duration, sources ...CountSource) *EntityGaugeCollector {
	return &EntityGaugeCollector{
		sources:  sources,
		metrics:  m,
		interval: interval,
		timeout:  5 * time.Second,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はコレクターを開始する。起動直後に一度集計する
func (g *EntityGaugeCollector) Start(ctx context.Context) {
	logger.Info("件数ゲージ収集開始",
		zap.Duration("interval", g.interval),
		zap.Int("sources", len(g.sources)),
	)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	defer close(g.doneCh)

	g.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("件数ゲージ収集停止（コンテキストキャンセル）")
			return
		case <-g.stopCh:
			logger.Info("件数ゲージ収集停止（シグナル受信）")
			return
		case <-ticker.C:
			g.collect(ctx)
		}
	}
}

// Stop はコレクターを停止し、ループの終了を待つ
func (g *EntityGaugeCollector) Stop() {
	close(g.stopCh)
	<-g.doneCh
}

// collect は各ソースの件数をゲージに設定する
// 失敗したソースは前回値のまま残す
func (g *EntityGaugeCollector) collect(ctx context.Context) {
	log := logger.Get()

	for _, src := range g.sources {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		n, err := src.Counter.Count(cctx)
		cancel()
		if err != nil {
			log.Warn("件数の取得に失敗", zap.String("entity", src.Entity), zap.Error(err))
			continue
		}
		g.metrics.SetEntityCount(src.Entity, n)
		log.Debug("件数ゲージ更新", zap.String("entity", src.Entity), zap.Int("count", n))
	}
}
