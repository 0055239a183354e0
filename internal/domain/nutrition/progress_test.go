package nutrition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/test/testutils"
)

func TestUpsertProgress(t *testing.T) {
	history := []nutrition.ProgressData{
		{Date: "2024-01-03"},
		{Date: "2024-01-01"},
	}

	history = nutrition.UpsertProgress(history, nutrition.ProgressData{Date: "2024-01-02", Notes: "new"})
	history = nutrition.UpsertProgress(history, nutrition.ProgressData{Date: "2024-01-03", Notes: "replaced"})

	require.Len(t, history, 3)
	assert.Equal(t, "2024-01-01", history[0].Date)
	assert.Equal(t, "new", history[1].Notes)
	assert.Equal(t, "replaced", history[2].Notes)
}

func TestUpsertProgress_DoesNotMutateInput(t *testing.T) {
	history := []nutrition.ProgressData{{Date: "2024-01-01", Notes: "original"}}

	_ = nutrition.UpsertProgress(history, nutrition.ProgressData{Date: "2024-01-01", Notes: "changed"})

	assert.Equal(t, "original", history[0].Notes)
}

func TestRemoveProgress(t *testing.T) {
	history := []nutrition.ProgressData{{Date: "2024-01-01"}, {Date: "2024-01-02"}}

	out, ok := nutrition.RemoveProgress(history, "2024-01-01")
	require.True(t, ok)
	assert.Equal(t, []nutrition.ProgressData{{Date: "2024-01-02"}}, out)
	assert.Len(t, history, 2)

	_, ok = nutrition.RemoveProgress(out, "2030-01-01")
	assert.False(t, ok)
}

func TestValidDate(t *testing.T) {
	assert.True(t, nutrition.ValidDate("2024-02-29"))
	assert.False(t, nutrition.ValidDate("2023-02-29"))
	assert.False(t, nutrition.ValidDate("2024-2-3"))
	assert.False(t, nutrition.ValidDate(""))
}

func TestTargetMacros(t *testing.T) {
	t.Run("splits remaining calories", func(t *testing.T) {
		p := testutils.NewProfileBuilder().WithTargets(1800, 90).Build()

		macros, ok := nutrition.TargetMacros(p)

		require.True(t, ok)
		assert.InDelta(t, 360.0, macros.ProteinCalories, 1e-9)
		assert.InDelta(t, 198.0, macros.CarbsGrams, 1e-9)
		assert.InDelta(t, 72.0, macros.FatsGrams, 1e-9)
	})

	t.Run("protein exceeding calories leaves nothing", func(t *testing.T) {
		p := testutils.NewProfileBuilder().WithTargets(300, 100).Build()

		macros, ok := nutrition.TargetMacros(p)

		require.True(t, ok)
		assert.Zero(t, macros.CarbsGrams)
		assert.Zero(t, macros.FatsGrams)
	})

	t.Run("no targets", func(t *testing.T) {
		_, ok := nutrition.TargetMacros(testutils.NewProfileBuilder().Build())
		assert.False(t, ok)
	})
}

func TestSummarizeProgress_Empty(t *testing.T) {
	summary := nutrition.SummarizeProgress(testutils.NewProfileBuilder().Build(), nil)

	assert.Zero(t, summary.Entries)
	assert.Nil(t, summary.LatestWeight)
	assert.Nil(t, summary.WeightChange)
	assert.Nil(t, summary.AverageEnergy)
	assert.Nil(t, summary.Targets)
}
