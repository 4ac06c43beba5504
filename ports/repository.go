package ports

import (
	"context"

	"gridstat/domain/core"
	"gridstat/domain/stats"
)

// ResultRepository persists analysis envelopes for the output-collection
// layer. The engines themselves never touch it.
type ResultRepository interface {
	Save(ctx context.Context, result *stats.AnalysisResult) error
	GetByID(ctx context.Context, id core.AnalysisID) (*stats.AnalysisResult, error)
	List(ctx context.Context, limit int) ([]*stats.AnalysisResult, error)
	Delete(ctx context.Context, id core.AnalysisID) error
}
