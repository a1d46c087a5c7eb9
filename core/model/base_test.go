package model

import (
	"testing"

	"github.com/YuminosukeSato/pcaffine/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseEstimatorZeroValueIsNotFitted(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())
	assert.Equal(t, NotFitted, e.State())
	assert.Equal(t, "not fitted", e.State().String())

	err := e.CheckFitted("affine.Transform", "Apply")
	require.Error(t, err)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Apply", nf.Method)
}

func TestBaseEstimatorSetFitted(t *testing.T) {
	var e BaseEstimator
	e.SetFitted()
	assert.True(t, e.IsFitted())
	assert.Equal(t, "fitted", e.State().String())
	assert.NoError(t, e.CheckFitted("affine.Transform", "Apply"))
}
