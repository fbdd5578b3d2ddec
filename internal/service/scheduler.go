package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshTimeout = time.Minute

// Scheduler 周期任务：定时重新统计热门标签并写入缓存
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler 按 cron 表达式注册热门标签刷新任务；表达式为空时返回 nil
func NewScheduler(expr string, tags TagService, logger *zap.Logger) (*Scheduler, error) {
	if expr == "" {
		return nil, nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		popular, err := tags.Refresh(ctx)
		if err != nil {
			logger.Error("定时刷新热门标签失败", zap.Error(err))
			return
		}
		logger.Debug("热门标签已刷新", zap.Int("count", len(popular)))
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务已启动", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
