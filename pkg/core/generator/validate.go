package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

// ValidationError reports field-level problems with a generation request
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "invalid generation request: " + strings.Join(parts, "; ")
}

// ValidateRequest checks a request before generation. Fatal problems return
// a ValidationError; problems with a sensible default are repaired in place
// and reported as warnings (a missing rotation mode defaults to sequential,
// a non-positive cycle length defaults to the candidate count at selection
// time).
func ValidateRequest(req *Request) ([]string, error) {
	fields := make(map[string]string)

	if req.Rule == nil {
		return nil, &ValidationError{Fields: map[string]string{"rule": "missing"}}
	}
	if len(req.Shifts) == 0 {
		fields["shifts"] = "at least one shift is required"
	}
	if len(req.Roles) == 0 {
		fields["roles"] = "at least one role is required"
	}
	if req.EndDate.Before(req.StartDate) {
		fields["endDate"] = "end date precedes start date"
	}
	for _, s := range req.Shifts {
		if err := model.ValidateShiftTime(s.StartTime); err != nil {
			fields["shifts."+s.ID+".startTime"] = err.Error()
		}
		if err := model.ValidateShiftTime(s.EndTime); err != nil {
			fields["shifts."+s.ID+".endTime"] = err.Error()
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var warnings []string
	if req.Rule.Mode == "" {
		req.Rule.Mode = model.ModeSequential
		warnings = append(warnings, "rotation mode missing, defaulting to sequential")
	}
	if req.Rule.CycleLength < 0 {
		req.Rule.CycleLength = 0
		warnings = append(warnings, "negative rotation cycle ignored")
	}

	return warnings, nil
}
