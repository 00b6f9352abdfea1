// Package hybrid combines the local classifier and the response catalog into
// a single on-device diagnosis. When it produces no result, the caller is
// expected to fall back to the remote diagnosis service.
package hybrid

import (
	"context"

	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	logx "github.com/aegis-support-poc/client/pkg/logger"
)

// DefaultMinConfidence gates catalog lookups: a prediction below this level
// never surfaces a canned answer, it falls through to the remote path.
const DefaultMinConfidence = 0.8

// Fallback content for a trusted intent the pack has no entry for.
const missingEntryMessage = "Local model detected intent but no response pack entry was found."

var missingEntryActions = []string{"Sync response packs", "Retry in remote mode"}

type Coordinator struct {
	classifier    model.LocalClassifier
	catalog       model.ResponseCatalog
	minConfidence float64
}

func NewCoordinator(classifier model.LocalClassifier, catalog model.ResponseCatalog, minConfidence float64) *Coordinator {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Coordinator{
		classifier:    classifier,
		catalog:       catalog,
		minConfidence: minConfidence,
	}
}

// Diagnose runs the on-device path. It returns (nil, nil) when no rule fires,
// when confidence is below the gate, or when the catalog cannot be loaded;
// all three mean "use the remote fallback". A trusted intent without a pack
// entry yields a partial diagnosis pointing at the pack sync actions.
func (c *Coordinator) Diagnose(ctx context.Context, query string) (*model.Diagnosis, error) {
	prediction := c.classifier.Classify(query)
	if prediction == nil || prediction.Confidence < c.minConfidence {
		return nil, nil
	}

	entry, err := c.catalog.Lookup(ctx, prediction.Intent)
	if err != nil {
		// Catalog unavailable is a soft failure on this path.
		logx.Warn().
			Str("component", "hybrid").
			Str("intent", prediction.Intent).
			Err(err).
			Msg("catalog unavailable, deferring to remote path")
		return nil, nil
	}
	if entry == nil {
		return &model.Diagnosis{
			Intent:     prediction.Intent,
			Confidence: prediction.Confidence,
			Message:    missingEntryMessage,
			Actions:    missingEntryActions,
			Source:     model.SourceOnDevice,
		}, nil
	}

	return &model.Diagnosis{
		Intent:     entry.Intent,
		Confidence: prediction.Confidence,
		Message:    entry.Diagnosis,
		Actions:    entry.Actions,
		Source:     model.SourceOnDevice,
	}, nil
}
