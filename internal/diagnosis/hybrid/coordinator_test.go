package hybrid

import (
	"context"
	"errors"
	"testing"

	"github.com/aegis-support-poc/client/internal/diagnosis/classifier"
	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	prediction *model.Prediction
}

func (s *stubClassifier) Classify(string) *model.Prediction {
	return s.prediction
}

type stubCatalog struct {
	entry *model.CatalogEntry
	err   error
}

func (s *stubCatalog) Lookup(context.Context, string) (*model.CatalogEntry, error) {
	return s.entry, s.err
}

func (s *stubCatalog) Reload(context.Context) error { return nil }

func TestDiagnose_FullMatch(t *testing.T) {
	c := NewCoordinator(
		&stubClassifier{prediction: &model.Prediction{Intent: "GenerateOTP", Confidence: 0.84}},
		&stubCatalog{entry: &model.CatalogEntry{
			Intent:    "GenerateOTP",
			Diagnosis: "OTP seed is out of sync.",
			Actions:   []string{"Check OTP seed", "Resync clock"},
		}},
		0,
	)

	d, err := c.Diagnose(context.Background(), "otp code not generating")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "GenerateOTP", d.Intent)
	assert.Equal(t, 0.84, d.Confidence)
	assert.Equal(t, "OTP seed is out of sync.", d.Message)
	assert.Equal(t, model.SourceOnDevice, d.Source)
}

func TestDiagnose_ConfidenceGateBeforeCatalog(t *testing.T) {
	// Any confidence below the gate must defer to remote, even when the
	// catalog has a perfectly good entry.
	for _, conf := range []float64{0.0, 0.3, 0.5, 0.79, 0.7999} {
		c := NewCoordinator(
			&stubClassifier{prediction: &model.Prediction{Intent: "GenerateOTP", Confidence: conf}},
			&stubCatalog{entry: &model.CatalogEntry{Intent: "GenerateOTP", Diagnosis: "canned"}},
			0,
		)
		d, err := c.Diagnose(context.Background(), "otp broken")
		require.NoError(t, err)
		assert.Nil(t, d, "confidence %v must not surface a diagnosis", conf)
	}
}

func TestDiagnose_NoPrediction(t *testing.T) {
	c := NewCoordinator(&stubClassifier{}, &stubCatalog{}, 0)

	d, err := c.Diagnose(context.Background(), "ab")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDiagnose_MissingEntryIsPartialSuccess(t *testing.T) {
	c := NewCoordinator(
		&stubClassifier{prediction: &model.Prediction{Intent: "GenerateOTP", Confidence: 0.84}},
		&stubCatalog{},
		0,
	)

	d, err := c.Diagnose(context.Background(), "OTP code not generating")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "GenerateOTP", d.Intent)
	assert.Equal(t, model.SourceOnDevice, d.Source)
	assert.Contains(t, d.Message, "no response pack entry")
	assert.Equal(t, []string{"Sync response packs", "Retry in remote mode"}, d.Actions)
}

func TestDiagnose_CatalogFailureDefersToRemote(t *testing.T) {
	c := NewCoordinator(
		&stubClassifier{prediction: &model.Prediction{Intent: "GenerateOTP", Confidence: 0.84}},
		&stubCatalog{err: errors.New("pack missing")},
		0,
	)

	d, err := c.Diagnose(context.Background(), "otp broken")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDiagnose_WithRealClassifier(t *testing.T) {
	// End-to-end over the rule table: "ab" is rejected before any lookup.
	c := NewCoordinator(classifier.NewRuleBased(), &stubCatalog{}, 0)

	d, err := c.Diagnose(context.Background(), "ab")
	require.NoError(t, err)
	assert.Nil(t, d)
}
