package analytics

import (
	"gitlab.com/aoterocom/AORiskTrader/models"
)

// CandidateAnalysis is the evaluation of one candidate strategy during model selection
type CandidateAnalysis struct {
	Strategy          models.StrategyConfig
	TrainingMetrics   models.PerformanceMetrics
	ValidationMetrics *models.PerformanceMetrics
	Passed            bool
	IsSelected        bool
}

// SelectionAnalysis gathers every candidate analysed for a symbol
type SelectionAnalysis struct {
	Symbol     string
	Interval   string
	Candidates []CandidateAnalysis
}

// Best returns the passing candidate with the highest sharpe ratio, or nil
func (s *SelectionAnalysis) Best() *CandidateAnalysis {
	var best *CandidateAnalysis
	for i := range s.Candidates {
		candidate := &s.Candidates[i]
		if !candidate.Passed {
			continue
		}
		if best == nil || candidate.TrainingMetrics.SharpeRatio > best.TrainingMetrics.SharpeRatio {
			best = candidate
		}
	}
	return best
}
