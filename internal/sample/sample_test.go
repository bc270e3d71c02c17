package sample

import (
	"testing"

	"github.com/KaramelBytes/glycoscope/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsAreDeterministic(t *testing.T) {
	a := Records(25, 7, 0)
	b := Records(25, 7, 0)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Records(25, 8, 0))
	for _, r := range a {
		require.Len(t, r, len(Header))
	}
}

func TestDatasetKindsAndOutliers(t *testing.T) {
	ds, err := Dataset(40, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 40, ds.Len())

	for _, name := range []string{"gender", "ethnicity", "diabetes_stage"} {
		c, err := ds.Column(name)
		require.NoError(t, err)
		assert.Equal(t, dataset.Categorical, c.Kind, name)
	}
	hba1c, err := ds.Numeric("hba1c")
	require.NoError(t, err)
	n := 0
	for _, v := range hba1c {
		if v == 20 {
			n++
		}
	}
	assert.Equal(t, 4, n)
}
