package plan

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMalformedString(t *testing.T) {
	for _, raw := range []string{"not json", "", "{broken", "[1,2", "```json"} {
		got := Sanitize(raw, "slow laptop")

		assert.Equal(t, "Failed to parse AI response", got.Summary, "raw=%q", raw)
		assert.Equal(t, "Unknown", got.Software)
		assert.Equal(t, "slow laptop", got.Issue)
		require.Len(t, got.Steps, 1)
		assert.Equal(t, "AI returned invalid format", got.Steps[0].Description)
		assert.NotEmpty(t, got.Steps[0].Command)
		assert.Equal(t, 5, got.EstimatedTimeMinutes)
		assert.False(t, got.NeedsReboot)
	}
}

func TestSanitizeDoubleEncodedString(t *testing.T) {
	raw := `{"software":"Firefox","steps":[{"description":"Restart browser","command":"pkill firefox"}]}`

	got := Sanitize(raw, "crashes")

	assert.Equal(t, "Firefox", got.Software)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, "pkill firefox", got.Steps[0].Command)
}

func TestSanitizeErrorKey(t *testing.T) {
	got := Sanitize(map[string]any{"error": "timeout"}, "wifi drops")

	assert.Equal(t, "AI service error", got.Summary)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, "timeout", got.Steps[0].Description)
	assert.Equal(t, 5, got.EstimatedTimeMinutes)
	assert.False(t, got.NeedsReboot)
}

func TestSanitizeMissingSteps(t *testing.T) {
	for name, raw := range map[string]map[string]any{
		"absent": {"software": "Excel"},
		"empty":  {"software": "Excel", "steps": []any{}},
	} {
		got := Sanitize(raw, "file won't open")

		require.Len(t, got.Steps, 1, name)
		assert.Equal(t, "No repair steps generated", got.Steps[0].Description)
		assert.NotEmpty(t, got.Steps[0].Command)
		assert.Equal(t, 10, got.EstimatedTimeMinutes)
	}
}

func TestSanitizeCapsStepsAtSix(t *testing.T) {
	var steps []any
	for i := 0; i < 10; i++ {
		steps = append(steps, map[string]any{
			"description": "step " + string(rune('a'+i)),
			"command":     "cmd-" + string(rune('a'+i)),
		})
	}

	got := Sanitize(map[string]any{"steps": steps}, "issue")

	require.Len(t, got.Steps, 6)
	for i, step := range got.Steps {
		assert.Equal(t, "cmd-"+string(rune('a'+i)), step.Command, "order must be preserved")
	}
}

func TestSanitizeDropsNonMappingSteps(t *testing.T) {
	got := Sanitize(map[string]any{"steps": []any{
		map[string]any{"description": "a", "command": "x"},
		"not-a-mapping",
		map[string]any{"description": "b", "command": "y"},
	}}, "issue")

	require.Len(t, got.Steps, 2)
	assert.Equal(t, "a", got.Steps[0].Description)
	assert.Equal(t, "x", got.Steps[0].Command)
	assert.Equal(t, "b", got.Steps[1].Description)
	assert.Equal(t, "y", got.Steps[1].Command)
}

func TestSanitizeSynthesizesCommand(t *testing.T) {
	long := strings.Repeat("Clear the browser cache now ", 10)

	got := Sanitize(map[string]any{"steps": []any{
		map[string]any{"description": "Clear cache", "command": ""},
		map[string]any{"description": long},
		map[string]any{"description": "Spaces only", "command": "   "},
	}}, "slow browser")

	require.Len(t, got.Steps, 3)
	for _, step := range got.Steps {
		assert.NotEmpty(t, step.Command)
		assert.True(t, strings.HasPrefix(step.Command, "echo "))
	}
	assert.Equal(t, "echo Clear cache", got.Steps[0].Command)
	assert.Contains(t, got.Steps[1].Command, long[:50])
	assert.Equal(t, "echo Spaces only", got.Steps[2].Command)
}

func TestSanitizeTruncatesFields(t *testing.T) {
	got := Sanitize(map[string]any{"steps": []any{
		map[string]any{
			"description": strings.Repeat("d", 400),
			"command":     strings.Repeat("c", 600),
		},
	}}, "issue")

	require.Len(t, got.Steps, 1)
	assert.Len(t, got.Steps[0].Description, 300)
	assert.Len(t, got.Steps[0].Command, 500)
}

func TestSanitizeFieldDefaults(t *testing.T) {
	got := Sanitize(map[string]any{}, "printer offline")

	assert.Equal(t, "Unknown", got.Software)
	assert.Equal(t, "printer offline", got.Issue)
	assert.Equal(t, "Repair steps", got.Summary)
	assert.Equal(t, 10, got.EstimatedTimeMinutes)
	assert.False(t, got.NeedsReboot)
}

func TestSanitizeCoercesTypes(t *testing.T) {
	got := Sanitize(map[string]any{
		"estimated_time_minutes": float64(25),
		"needs_reboot":           true,
		"steps": []any{
			map[string]any{"description": "step", "command": "cmd", "requires_sudo": float64(1)},
		},
	}, "issue")

	assert.Equal(t, 25, got.EstimatedTimeMinutes)
	assert.True(t, got.NeedsReboot)
	assert.True(t, got.Steps[0].RequiresSudo)
}

func TestSanitizeIdempotent(t *testing.T) {
	first := Sanitize(map[string]any{
		"software": "Chrome",
		"summary":  "Fix slow startup",
		"steps": []any{
			map[string]any{"description": "Disable extensions", "command": "chrome --disable-extensions", "requires_sudo": false},
			map[string]any{"description": "Clear cache", "command": "", "requires_sudo": true},
		},
		"estimated_time_minutes": float64(20),
		"needs_reboot":           true,
	}, "slow browser")

	// Feed the sanitized output back in as if it were raw AI input.
	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	var asRaw map[string]any
	require.NoError(t, json.Unmarshal(encoded, &asRaw))

	second := Sanitize(asRaw, "slow browser")
	assert.Equal(t, first, second)
}

func TestSanitizeEndToEndScenarios(t *testing.T) {
	// Scenario A
	a := Sanitize("not json", "issue")
	assert.Equal(t, "Failed to parse AI response", a.Summary)

	// Scenario B
	b := Sanitize(map[string]any{"error": "timeout"}, "issue")
	require.Len(t, b.Steps, 1)
	assert.Equal(t, "timeout", b.Steps[0].Description)
	assert.Equal(t, 5, b.EstimatedTimeMinutes)

	// Scenario C
	c := Sanitize(map[string]any{
		"software": "Chrome",
		"steps": []any{
			map[string]any{"description": "Clear cache", "command": "", "requires_sudo": false},
		},
	}, "slow browser")
	assert.Equal(t, "Chrome", c.Software)
	require.Len(t, c.Steps, 1)
	assert.True(t, strings.HasPrefix(c.Steps[0].Command, "echo "))
	assert.Contains(t, c.Steps[0].Command, "Clear cache")
}
