package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultStatisticsInterval = 5 * time.Minute

	hotspotThreshold    = 0.7
	criticalPathLimit   = 5
	bottleneckMinDegree = 2
)

// ComputeStatistics derives hotspots, critical paths, bottlenecks and
// isolated nodes from the current graph and keeps the snapshot for
// Statistics.
func (s *CausalService) ComputeStatistics(ctx context.Context) *domain.GraphStatistics {
	s.mu.RLock()
	stats := s.computeStatistics()
	s.mu.RUnlock()

	s.statsMu.Lock()
	s.stats = stats
	s.statsMu.Unlock()
	return stats
}

// Statistics returns the last computed snapshot, or nil if none exists yet.
func (s *CausalService) Statistics() *domain.GraphStatistics {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

func (s *CausalService) computeStatistics() *domain.GraphStatistics {
	stats := &domain.GraphStatistics{
		RiskHotspots:  []domain.RiskHotspot{},
		CriticalPaths: []domain.CriticalPath{},
		Bottlenecks:   []string{},
		IsolatedNodes: []string{},
		ComputedAt:    s.now(),
	}

	for _, n := range s.store.Nodes() {
		if n.Impact.Irreversibility > hotspotThreshold {
			stats.RiskHotspots = append(stats.RiskHotspots, domain.RiskHotspot{
				NodeID:          n.ID,
				Description:     n.Description,
				Irreversibility: n.Impact.Irreversibility,
			})
		}
		if len(n.Causes) >= bottleneckMinDegree && len(n.Effects) >= bottleneckMinDegree {
			stats.Bottlenecks = append(stats.Bottlenecks, n.ID)
		}
		if len(n.Causes) == 0 && len(n.Effects) == 0 {
			stats.IsolatedNodes = append(stats.IsolatedNodes, n.ID)
			continue
		}
		if len(n.Causes) == 0 {
			if cp, ok := s.criticalPathFrom(n.ID); ok {
				stats.CriticalPaths = append(stats.CriticalPaths, cp)
			}
		}
	}

	sort.SliceStable(stats.RiskHotspots, func(i, j int) bool {
		return stats.RiskHotspots[i].Irreversibility > stats.RiskHotspots[j].Irreversibility
	})
	sort.SliceStable(stats.CriticalPaths, func(i, j int) bool {
		return stats.CriticalPaths[i].Risk > stats.CriticalPaths[j].Risk
	})
	if len(stats.CriticalPaths) > criticalPathLimit {
		stats.CriticalPaths = stats.CriticalPaths[:criticalPathLimit]
	}
	return stats
}

// criticalPathFrom picks the riskiest forward path from a root, preferring
// the longer path on equal risk.
func (s *CausalService) criticalPathFrom(rootID string) (domain.CriticalPath, bool) {
	chain := s.buildChain(rootID, s.trace(rootID, metadataTraceDepth, domain.DirectionForward), domain.DirectionForward)

	var best *domain.CausalPath
	for i := range chain.Paths {
		p := &chain.Paths[i]
		if best == nil || p.Risk > best.Risk || (p.Risk == best.Risk && len(p.NodeIDs) > len(best.NodeIDs)) {
			best = p
		}
	}
	if best == nil {
		return domain.CriticalPath{}, false
	}
	return domain.CriticalPath{RootID: rootID, NodeIDs: best.NodeIDs, Risk: best.Risk}, true
}

// StatisticsService refreshes graph statistics on a fixed interval so the
// API can serve them without recomputing per request.
type StatisticsService struct {
	causal *CausalService
	logger *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewStatisticsService(causal *CausalService, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{
		causal:   causal,
		logger:   logger,
		interval: defaultStatisticsInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *StatisticsService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *StatisticsService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("statistics worker started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stopCh:
				s.logger.Info("statistics worker stopped")
				return
			}
		}
	}()
}

func (s *StatisticsService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *StatisticsService) RunOnce(ctx context.Context) *domain.GraphStatistics {
	stats := s.causal.ComputeStatistics(ctx)
	s.logger.Debug("graph statistics refreshed",
		zap.Int("hotspots", len(stats.RiskHotspots)),
		zap.Int("critical_paths", len(stats.CriticalPaths)),
		zap.Int("bottlenecks", len(stats.Bottlenecks)),
		zap.Int("isolated", len(stats.IsolatedNodes)))
	return stats
}
