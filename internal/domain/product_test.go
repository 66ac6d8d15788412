package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade(t *testing.T) {
	tests := []struct {
		in   string
		want Grade
	}{
		{"a", GradeA},
		{"E", GradeE},
		{" c ", GradeC},
		{"not-applicable", GradeNotApplicable},
		{"unknown", GradeUnknown},
		{"", GradeUnknown},
		{"f", GradeUnknown},
		{"z", GradeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGrade(tt.in))
		})
	}
}

func TestGradeRank(t *testing.T) {
	rank, ok := GradeA.Rank()
	assert.True(t, ok)
	assert.Equal(t, 0, rank)

	rank, ok = GradeE.Rank()
	assert.True(t, ok)
	assert.Equal(t, 4, rank)

	_, ok = GradeNotApplicable.Rank()
	assert.False(t, ok)
	assert.False(t, GradeUnknown.Known())
}

func TestNovaGroupJSON(t *testing.T) {
	t.Run("known group marshals as number", func(t *testing.T) {
		data, err := json.Marshal(NovaGroup(3))
		require.NoError(t, err)
		assert.JSONEq(t, `3`, string(data))
	})

	t.Run("unknown group marshals as sentinel", func(t *testing.T) {
		data, err := json.Marshal(NovaUnknown)
		require.NoError(t, err)
		assert.JSONEq(t, `"unknown"`, string(data))
	})

	t.Run("decodes numbers, numeric strings and junk", func(t *testing.T) {
		var groups []NovaGroup
		require.NoError(t, json.Unmarshal([]byte(`[1, "4", "unknown", 7, 2.5]`), &groups))
		assert.Equal(t, []NovaGroup{1, 4, NovaUnknown, NovaUnknown, NovaUnknown}, groups)
	})
}

func TestIntakesFor(t *testing.T) {
	profile, intakes := IntakesFor(ProfileMen)
	assert.Equal(t, ProfileMen, profile)
	assert.Equal(t, 2500.0, intakes.Energy)

	profile, intakes = IntakesFor("children")
	assert.Equal(t, ProfileWomen, profile)
	assert.Equal(t, 2000.0, intakes.Energy)
}

func TestNovaDescription(t *testing.T) {
	assert.Equal(t, "Produits ultra-transformés", NovaDescription(4))
	assert.Empty(t, NovaDescription(NovaUnknown))
}
