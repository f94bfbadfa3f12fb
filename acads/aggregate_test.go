package acads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateTwo(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{3.995, 3.99},
		{3.999999, 3.99},
		{4, 4},
		{23.8 / 7, 3.40},
		{0, 0},
		{2.005, 2.00},
		{3.456, 3.45},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, TruncateTwo(tc.in), 1e-12, "TruncateTwo(%v)", tc.in)
	}
}

func TestSGPA(t *testing.T) {
	t.Run("two courses", func(t *testing.T) {
		assert.Equal(t, 3.40, SGPA(14.8+9.0, 7, 2))
	})
	t.Run("zero credits", func(t *testing.T) {
		assert.Equal(t, 0.0, SGPA(12, 0, 3))
	})
	t.Run("no courses", func(t *testing.T) {
		assert.Equal(t, 0.0, SGPA(0, 0, 0))
	})
	t.Run("truncates instead of rounding", func(t *testing.T) {
		// 11.985 / 3 = 3.995
		assert.Equal(t, 3.99, SGPA(11.985, 3, 1))
	})
}

func TestCGPA(t *testing.T) {
	assert.Equal(t, 3.70, CGPA([]float64{3.40, 4.00, 0}))
	assert.Equal(t, 0.0, CGPA(nil))
	assert.Equal(t, 0.0, CGPA([]float64{0, 0}))
	assert.Equal(t, 3.33, CGPA([]float64{3.00, 3.00, 4.00}))
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Add("Semester 1", 14.8, 4)
	acc.Add("Semester 1", 9.0, 3)
	acc.Add("Semester 2", 16, 4)
	acc.Add("Semester 3", 0, 0)

	aggs, cgpa := acc.Finalize()
	require.Len(t, aggs, 3)

	s1 := aggs["Semester 1"]
	assert.Equal(t, 2, s1.Courses)
	assert.Equal(t, 7.0, s1.Credits)
	assert.InDelta(t, 23.8, s1.GradePoints, 1e-9)
	assert.Equal(t, 3.40, s1.SGPA)

	assert.Equal(t, 4.00, aggs["Semester 2"].SGPA)

	s3 := aggs["Semester 3"]
	assert.Equal(t, 1, s3.Courses)
	assert.Equal(t, 0.0, s3.SGPA)

	assert.Equal(t, 3.70, cgpa)
}

func TestNormalizeLabel(t *testing.T) {
	got, err := NormalizeLabel("  Semester   5 ")
	require.NoError(t, err)
	assert.Equal(t, "Semester 5", got)

	for _, bad := range []string{"", "semester 5", "Semester", "Semester 0", "Sem 3", "Semester 3a"} {
		_, err := NormalizeLabel(bad)
		require.Error(t, err, bad)
		assert.True(t, IsDataShape(err), bad)
	}
}

func TestSortLabels(t *testing.T) {
	labels := []string{"Semester 10", "Semester 2", "Misc", "Semester 1"}
	SortLabels(labels)
	assert.Equal(t, []string{"Semester 1", "Semester 2", "Semester 10", "Misc"}, labels)
}
