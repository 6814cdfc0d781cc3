package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected *float64
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "float", input: 2.5, expected: f(2.5)},
		{name: "currency string", input: "$1,500,000", expected: f(1500000)},
		{name: "percent string", input: "25%", expected: f(25)},
		{name: "garbage", input: "n/a", expected: nil},
		{name: "blank", input: "  ", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToFloat(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.expected, *got, 1e-9)
			}
		})
	}
}

func TestToBool(t *testing.T) {
	assert.Nil(t, ToBool(nil))
	assert.Nil(t, ToBool("maybe"))
	assert.Equal(t, true, *ToBool("Yes"))
	assert.Equal(t, true, *ToBool("provided"))
	assert.Equal(t, false, *ToBool("not provided"))
	assert.Equal(t, false, *ToBool("0"))
	assert.Equal(t, true, *ToBool(true))
}

func TestToListSplitsDelimitedStrings(t *testing.T) {
	assert.Equal(t, []interface{}{"fintech", "saas"}, ToList("fintech, saas"))
	assert.Equal(t, []interface{}{"a", "b", "c"}, ToList("a;b; c"))
	assert.Equal(t, []interface{}{"single"}, ToList("single"))
	assert.Empty(t, ToList(nil))
	assert.Empty(t, ToList("  "))
}

func TestUniqueNormListKeepsFirstCasing(t *testing.T) {
	got := UniqueNormList([]interface{}{"FinTech", "fintech", "SaaS", "", nil, "saas"})
	assert.Equal(t, []string{"FinTech", "SaaS"}, got)
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected *float64
	}{
		{name: "ratio stays", input: 0.75, expected: f(0.75)},
		{name: "percent scales", input: 75.0, expected: f(0.75)},
		{name: "suffixed string", input: "80%", expected: f(0.8)},
		{name: "over 100", input: 150.0, expected: nil},
		{name: "nil", input: nil, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePercent(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.InDelta(t, *tt.expected, *got, 1e-9)
			}
		})
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Pre-Seed", expected: "pre_seed"},
		{input: "preseed", expected: "pre_seed"},
		{input: "Seed", expected: "seed"},
		{input: "Series A", expected: "series_a"},
		{input: "series-b", expected: "series_b"},
		{input: "Series C", expected: "series_c_plus"},
		{input: "Series D", expected: "series_c_plus"},
		{input: "growth equity", expected: "series_c_plus"},
		{input: "raising a pre-seed round", expected: "pre_seed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeStage(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}

	assert.Nil(t, NormalizeStage("unknown stage"))
	assert.Nil(t, NormalizeStage(""))
}

func TestNormalizeInstrument(t *testing.T) {
	assert.Equal(t, "safe", *NormalizeInstrument("post-money SAFE"))
	assert.Equal(t, "convertible_note", *NormalizeInstrument("Convertible Note"))
	assert.Equal(t, "equity", *NormalizeInstrument("priced equity round"))
	assert.Equal(t, "debt", *NormalizeInstrument("venture debt"))
	assert.Equal(t, "revenue_share", *NormalizeInstrument("revenue share"))
	assert.Nil(t, NormalizeInstrument(""))
}

func TestNormalizeBusinessModel(t *testing.T) {
	t.Run("saas implies b2b", func(t *testing.T) {
		primary, b2b, b2c := NormalizeBusinessModel("Enterprise SaaS", nil, nil)
		require.NotNil(t, primary)
		assert.Equal(t, "b2b", *primary)
		assert.True(t, *b2b)
		assert.False(t, *b2c)
	})

	t.Run("flags infer primary", func(t *testing.T) {
		b2bTrue := true
		primary, _, _ := NormalizeBusinessModel(nil, &b2bTrue, nil)
		require.NotNil(t, primary)
		assert.Equal(t, "b2b", *primary)
	})

	t.Run("mixed model", func(t *testing.T) {
		primary, b2b, b2c := NormalizeBusinessModel("B2B and B2C", nil, nil)
		require.NotNil(t, primary)
		assert.Equal(t, "b2b_b2c", *primary)
		assert.True(t, *b2b)
		assert.True(t, *b2c)
	})

	t.Run("nothing known", func(t *testing.T) {
		primary, b2b, b2c := NormalizeBusinessModel(nil, nil, nil)
		assert.Nil(t, primary)
		assert.Nil(t, b2b)
		assert.Nil(t, b2c)
	})
}

func TestRangeOverlap(t *testing.T) {
	assert.True(t, RangeOverlap(f(100), f(500), f(400), f(900)))
	assert.False(t, RangeOverlap(f(100), f(200), f(300), f(400)))
	assert.False(t, RangeOverlap(nil, f(200), f(300), f(400)))
}

func TestAbsDistanceToRange(t *testing.T) {
	assert.Equal(t, 0.0, *AbsDistanceToRange(f(5), f(1), f(10)))
	assert.Equal(t, 3.0, *AbsDistanceToRange(f(13), f(1), f(10)))
	assert.Equal(t, 2.0, *AbsDistanceToRange(f(-1), f(1), f(10)))
	assert.Nil(t, AbsDistanceToRange(nil, f(1), f(10)))
}

func TestAdjacentStage(t *testing.T) {
	seed := "seed"
	assert.True(t, AdjacentStage(&seed, []string{"series_a"}))
	assert.True(t, AdjacentStage(&seed, []string{"Pre-Seed"}))
	assert.False(t, AdjacentStage(&seed, []string{"series_b"}))
	assert.False(t, AdjacentStage(nil, []string{"seed"}))
}

func TestStrictRoleConflict(t *testing.T) {
	yes := true
	assert.True(t, StrictRoleConflict(&yes, nil, "follow"))
	assert.True(t, StrictRoleConflict(nil, &yes, "lead"))
	assert.False(t, StrictRoleConflict(&yes, nil, "lead"))
	assert.False(t, StrictRoleConflict(nil, nil, "both"))
}

func TestArtifactCountPresent(t *testing.T) {
	assert.Equal(t, 3, ArtifactCountPresent(true, "https://deck", 1.0, false, "", nil))
}

func TestNormalizeConditionKey(t *testing.T) {
	assert.Equal(t, "stage in focus", NormalizeConditionKey("  stage \t in\n focus "))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "upload_pitch_deck", Slugify("Upload Pitch Deck!"))
	assert.Equal(t, "task", Slugify("???"))
}

func f(v float64) *float64 { return &v }
