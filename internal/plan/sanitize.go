package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sanitize normalizes an untrusted AI payload into a valid RepairPlan.
// raw may be a decoded JSON object, a string that itself contains JSON
// (the upstream model occasionally double-encodes), an object carrying
// an "error" key, or anything else malformed. fallbackIssue is the
// user's original issue text, used whenever raw omits its own.
//
// Sanitize never fails: whatever comes in, a structurally valid plan
// with at least one step comes out.
func Sanitize(raw any, fallbackIssue string) RepairPlan {
	if s, ok := raw.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return parseFailurePlan(fallbackIssue)
		}
		raw = decoded
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return parseFailurePlan(fallbackIssue)
	}

	if errVal, ok := obj["error"]; ok {
		return serviceErrorPlan(fallbackIssue, stringify(errVal))
	}

	sanitized := RepairPlan{
		Software:             getString(obj, "software", defaultSoftware),
		Issue:                getString(obj, "issue", fallbackIssue),
		Summary:              getString(obj, "summary", defaultSummary),
		EstimatedTimeMinutes: getInt(obj, "estimated_time_minutes", defaultTimeMinutes),
		NeedsReboot:          getBool(obj, "needs_reboot"),
	}

	rawSteps, _ := obj["steps"].([]any)
	if len(rawSteps) > maxSteps {
		rawSteps = rawSteps[:maxSteps]
	}
	for _, entry := range rawSteps {
		step, ok := entry.(map[string]any)
		if !ok {
			// Bare strings, numbers etc. are dropped, not guessed at.
			continue
		}
		sanitized.Steps = append(sanitized.Steps, sanitizeStep(step))
	}

	if len(sanitized.Steps) == 0 {
		sanitized.Steps = []RepairStep{{
			Description: placeholderStepDesc,
			Command:     placeholderStepCmd,
		}}
	}

	return sanitized
}

func sanitizeStep(step map[string]any) RepairStep {
	description := truncate(getString(step, "description", defaultStepDesc), maxDescriptionLen)

	command := strings.TrimSpace(getString(step, "command", ""))
	if command == "" {
		command = "echo " + truncate(getString(step, "description", "Manual step"), 50)
	}

	return RepairStep{
		Description:  description,
		Command:      truncate(command, maxCommandLen),
		RequiresSudo: getBool(step, "requires_sudo"),
	}
}

func parseFailurePlan(issue string) RepairPlan {
	return RepairPlan{
		Software:             defaultSoftware,
		Issue:                issue,
		Summary:              parseFailureSummary,
		Steps:                []RepairStep{{Description: parseFailureStepDesc, Command: parseFailureStepCmd}},
		EstimatedTimeMinutes: errorTimeMinutes,
	}
}

func serviceErrorPlan(issue, errMsg string) RepairPlan {
	return RepairPlan{
		Software:             defaultSoftware,
		Issue:                issue,
		Summary:              serviceErrorSummary,
		Steps:                []RepairStep{{Description: errMsg, Command: serviceErrorStepCmd}},
		EstimatedTimeMinutes: errorTimeMinutes,
	}
}

// ErrorPlan builds the degraded plan for an upstream AI failure. It is
// what generate-plan returns when the gateway itself reports an error.
func ErrorPlan(issue, errMsg string) RepairPlan {
	return serviceErrorPlan(issue, errMsg)
}

func getString(obj map[string]any, key, fallback string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return fallback
		}
		return s
	}
	return stringify(v)
}

func getInt(obj map[string]any, key string, fallback int) int {
	switch v := obj[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

func getBool(obj map[string]any, key string) bool {
	switch v := obj[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	case float64:
		return v != 0
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on rune boundaries so truncation never emits broken UTF-8.
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
