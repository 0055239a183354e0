package nutrition_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/test/testutils"
)

// WeeklyPlanTestSuite covers plan completion and stamping
type WeeklyPlanTestSuite struct {
	suite.Suite
	assertions *testutils.PlanAssertions
}

func (s *WeeklyPlanTestSuite) SetupTest() {
	s.assertions = testutils.NewPlanAssertions(s.T())
}

func (s *WeeklyPlanTestSuite) TestCompleteWeek() {
	s.Run("MissingDays_ShouldBecomeRestDays", func() {
		// Arrange
		plan := testutils.NewPlanBuilder("u1").
			WithDay(nutrition.Wednesday, testutils.Item("Poha", "")).
			WithDay(nutrition.Monday, testutils.Item("Idli", "")).
			Build()
		s.Equal([]string{nutrition.Tuesday, nutrition.Thursday, nutrition.Friday, nutrition.Saturday, nutrition.Sunday}, plan.MissingDays())

		// Act
		plan.CompleteWeek()

		// Assert
		s.assertions.CompleteWeek(&plan)
		s.Equal("Idli", plan.Days[0].Meals[0].Items[0].Name)
		s.Equal("Poha", plan.Days[2].Meals[0].Items[0].Name)
		s.assertions.RestDay(&plan, nutrition.Tuesday)
		s.assertions.RestDay(&plan, nutrition.Sunday)
		s.Empty(plan.MissingDays())
	})

	s.Run("DuplicateDays_ShouldKeepFirst", func() {
		plan := testutils.NewPlanBuilder("u1").
			WithDay(nutrition.Friday, testutils.Item("First", "")).
			WithDay(nutrition.Friday, testutils.Item("Second", "")).
			Build()

		plan.CompleteWeek()

		s.assertions.CompleteWeek(&plan)
		s.Equal("First", plan.Days[4].Meals[0].Items[0].Name)
	})

	s.Run("UnknownDays_ShouldBeDropped", func() {
		plan := testutils.NewPlanBuilder("u1").
			WithDay("Funday", testutils.Item("Cake", "")).
			WithDay("monday", testutils.Item("Lowercase", "")).
			Build()

		plan.CompleteWeek()

		s.assertions.CompleteWeek(&plan)
		for _, day := range nutrition.Weekdays {
			s.assertions.RestDay(&plan, day)
		}
	})

	s.Run("NilMeals_ShouldBecomeEmpty", func() {
		plan := nutrition.WeeklyPlan{Days: []nutrition.DailyPlan{{Day: nutrition.Monday}}}

		plan.CompleteWeek()

		s.NotNil(plan.Days[0].Meals)
		s.Empty(plan.Days[0].Notes)
	})
}

func (s *WeeklyPlanTestSuite) TestStamp() {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	s.Run("EmptyIdentity_ShouldBeFilled", func() {
		plan := nutrition.WeeklyPlan{UserID: "model-invented"}

		plan.Stamp("profile-1", now)

		s.Equal("profile-1", plan.UserID)
		s.NotEmpty(plan.PlanID)
		s.Equal("2026-10-18", plan.StartDate)
	})

	s.Run("ModelProvidedIdentity_ShouldBeKept", func() {
		plan := nutrition.WeeklyPlan{PlanID: "plan-9", StartDate: "2026-11-02"}

		plan.Stamp("profile-1", now)

		s.Equal("profile-1", plan.UserID)
		s.Equal("plan-9", plan.PlanID)
		s.Equal("2026-11-02", plan.StartDate)
	})
}

func TestWeeklyPlanTestSuite(t *testing.T) {
	suite.Run(t, new(WeeklyPlanTestSuite))
}

func TestReplacePlan(t *testing.T) {
	a := testutils.NewPlanBuilder("a").Build()
	b := testutils.NewPlanBuilder("b").Build()
	newA := testutils.NewPlanBuilder("a").Build()

	plans := nutrition.ReplacePlan([]nutrition.WeeklyPlan{a, b}, newA)

	require.Len(t, plans, 2)
	assert.Equal(t, b.PlanID, plans[0].PlanID)
	assert.Equal(t, newA.PlanID, plans[1].PlanID)

	plans = nutrition.ReplacePlan(nil, a)
	assert.Len(t, plans, 1)
}

func TestPlanMode_IsValid(t *testing.T) {
	for _, mode := range nutrition.PlanModes {
		assert.True(t, mode.IsValid(), mode)
	}
	assert.False(t, nutrition.PlanMode("balanced").IsValid())
	assert.False(t, nutrition.PlanMode("").IsValid())
}
