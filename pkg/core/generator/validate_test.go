package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

func validRequest() *Request {
	return &Request{
		Rule: &model.Rule{ID: "rule1", Mode: model.ModeSequential},
		Shifts: []*model.Shift{
			{ID: "s1", StartTime: "08:00", EndTime: "16:00"},
		},
		Roles:     []*model.Role{{ID: "r1", Name: "duty officer"}},
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2024, time.January, 5),
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	warnings, err := ValidateRequest(validRequest())
	assert.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateRequest_MissingRule(t *testing.T) {
	req := validRequest()
	req.Rule = nil

	_, err := ValidateRequest(req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rule")
}

func TestValidateRequest_CollectsAllFieldErrors(t *testing.T) {
	req := validRequest()
	req.Shifts = nil
	req.Roles = nil
	req.StartDate = day(2024, time.January, 5)
	req.EndDate = day(2024, time.January, 1)

	_, err := ValidateRequest(req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shifts")
	assert.Contains(t, verr.Fields, "roles")
	assert.Contains(t, verr.Fields, "endDate")
}

func TestValidateRequest_BadShiftTimes(t *testing.T) {
	req := validRequest()
	req.Shifts = []*model.Shift{{ID: "s1", StartTime: "25:00", EndTime: "16:61"}}

	_, err := ValidateRequest(req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shifts.s1.startTime")
	assert.Contains(t, verr.Fields, "shifts.s1.endTime")
}

func TestValidateRequest_MissingModeIsWarningNotError(t *testing.T) {
	req := validRequest()
	req.Rule.Mode = ""

	warnings, err := ValidateRequest(req)
	require.NoError(t, err)

	// The mode is repaired in place and the repair reported
	assert.Equal(t, model.ModeSequential, req.Rule.Mode)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "defaulting to sequential")
}

func TestValidateRequest_NegativeCycleIsWarningNotError(t *testing.T) {
	req := validRequest()
	req.Rule.CycleLength = -3

	warnings, err := ValidateRequest(req)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Rule.CycleLength)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "negative rotation cycle")
}

func TestValidationError_MessageListsFieldsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"b": "second",
		"a": "first",
	}}
	assert.Equal(t, "invalid generation request: a: first; b: second", err.Error())
}
