package decomposition

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sklearnWhitenedJSON = `{
  "components_": [[1, 0, 0], [0, 0, 1]],
  "mean_": [1, 2, 3],
  "explained_variance_": [4, 1],
  "explained_variance_ratio_": [0.8, 0.2],
  "whiten": true,
  "n_components_": 2,
  "n_features_in_": 3
}`

func TestLoadSKLearnPCA(t *testing.T) {
	pca, err := LoadSKLearnPCA(strings.NewReader(sklearnWhitenedJSON))
	require.NoError(t, err)

	w, ok := pca.(*Whitened)
	require.True(t, ok)
	assert.Equal(t, 2, w.NComponents())
	assert.Equal(t, 3, w.NFeatures())
	assert.Equal(t, []float64{1, 2, 3}, w.Mean())
	assert.Equal(t, []float64{4, 1}, w.Variance())
}

func TestLoadSKLearnPCAErrors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		invalid bool
	}{
		{"malformed json", `{"components_": [[1, 0]`, false},
		{"n_components mismatch", `{"components_": [[1, 0]], "mean_": [0, 0], "n_components_": 2}`, true},
		{"n_features mismatch", `{"components_": [[1, 0]], "mean_": [0, 0], "n_features_in_": 3}`, true},
		{"whiten without variance", `{"components_": [[1, 0]], "mean_": [0, 0], "whiten": true}`, true},
		{"zero variance", `{"components_": [[1, 0]], "mean_": [0, 0], "explained_variance_": [0], "whiten": true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSKLearnPCA(strings.NewReader(tt.json))
			require.Error(t, err)

			var invalid *errors.InvalidModelError
			assert.Equal(t, tt.invalid, errors.As(err, &invalid))
		})
	}
}

func TestAttributesRoundTripThroughFile(t *testing.T) {
	orig, err := FromAttributes(smallComponents(), []float64{1, 2, 3}, []float64{4, 1}, true)
	require.NoError(t, err)

	attrs, err := Attributes(orig)
	require.NoError(t, err)
	data, err := json.Marshal(attrs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pca.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadSKLearnPCAFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestLoadSKLearnPCAFileMissing(t *testing.T) {
	_, err := LoadSKLearnPCAFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
