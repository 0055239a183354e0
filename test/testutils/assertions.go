// Package testutils provides custom assertion helpers for domain-specific testing
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrismart/planner/internal/domain/nutrition"
)

// PlanAssertions provides plan-specific assertion methods
type PlanAssertions struct {
	t *testing.T
}

// NewPlanAssertions creates a new plan assertions helper
func NewPlanAssertions(t *testing.T) *PlanAssertions {
	return &PlanAssertions{t: t}
}

// CompleteWeek asserts the plan holds Monday to Sunday exactly once, in order
func (pa *PlanAssertions) CompleteWeek(plan *nutrition.WeeklyPlan, msgAndArgs ...interface{}) {
	require.NotNil(pa.t, plan, "Plan should not be nil")
	require.Len(pa.t, plan.Days, len(nutrition.Weekdays), msgAndArgs...)
	for i, day := range nutrition.Weekdays {
		assert.Equal(pa.t, day, plan.Days[i].Day, msgAndArgs...)
		assert.NotNil(pa.t, plan.Days[i].Meals, "Meals of %s should not be nil", day)
	}
}

// RestDay asserts the named day is the synthesized placeholder
func (pa *PlanAssertions) RestDay(plan *nutrition.WeeklyPlan, day string) {
	require.NotNil(pa.t, plan, "Plan should not be nil")
	for _, d := range plan.Days {
		if d.Day != day {
			continue
		}
		assert.Empty(pa.t, d.Meals, "%s should have no meals", day)
		assert.Equal(pa.t, nutrition.RestDayNote, d.Notes)
		require.NotNil(pa.t, d.DailyTotalCalories)
		assert.Zero(pa.t, *d.DailyTotalCalories)
		require.NotNil(pa.t, d.DailyTotalProtein)
		assert.Zero(pa.t, *d.DailyTotalProtein)
		return
	}
	pa.t.Errorf("plan has no %s", day)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the recorded status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// JSONResponse asserts that the response is JSON and unmarshals it into target
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target), "Response should be valid JSON")
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	require.NotNil(ha.t, rec, "Response should not be nil")

	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}
