package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/covdash/internal/model"
)

const vitestFixture = `{
	"total": {
		"lines": {"total": 120, "covered": 90, "skipped": 0, "pct": 75},
		"statements": {"total": 130, "covered": 95, "skipped": 0, "pct": 73.07},
		"functions": {"total": 20, "covered": 15, "skipped": 0, "pct": 75},
		"branches": {"total": 40, "covered": 10, "skipped": 0, "pct": 25},
		"branchesTrue": {"total": 0, "covered": 0, "skipped": 0, "pct": "Unknown"}
	},
	"/home/runner/work/gradio/gradio/js/core/src/Blocks.svelte": {
		"lines": {"total": 100, "covered": 80, "skipped": 0, "pct": 80},
		"functions": {"total": 10, "covered": 9, "skipped": 0, "pct": 90},
		"statements": {"total": 110, "covered": 85, "skipped": 0, "pct": 77.27},
		"branches": {"total": 30, "covered": 6, "skipped": 0, "pct": 20}
	}
}`

func metric(total, covered int, pct float64) *model.MetricGroup {
	return &model.MetricGroup{Total: total, Covered: covered, Pct: model.Pct(pct)}
}

func TestParseVitestPayload(t *testing.T) {
	report, err := DecodeVitestPayload(strings.NewReader(vitestFixture))
	require.NoError(t, err)
	require.Len(t, report.PerFile, 1)
	require.NotNil(t, report.Totals)

	result, err := ParseVitestPayload(report, DefaultPathPrefix)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	stat, ok := result.Files["js/core/src/Blocks.svelte"]
	require.True(t, ok, "expected entry keyed by the stripped path, got %v", result.Files)

	assert.Equal(t, model.VitestFileStat{
		FileName:         "Blocks.svelte",
		FilePath:         "js/core/src/Blocks.svelte",
		LinesTotal:       100,
		LinesCovered:     80,
		LinesPct:         80,
		FunctionsTotal:   10,
		FunctionsCovered: 9,
		FunctionsPct:     90,
		BranchesTotal:    30,
		BranchesCovered:  6,
		BranchesPct:      20,
	}, stat)

	assert.Equal(t, *report.Totals, result.Totals)
	require.NotNil(t, result.Totals.Statements)
	assert.Equal(t, 95, result.Totals.Statements.Covered)
	assert.False(t, result.Totals.BranchesTrue.Pct.Known)
}

func TestParseVitestPayloadTotalsPassthrough(t *testing.T) {
	report, err := DecodeVitestPayload(strings.NewReader(vitestFixture))
	require.NoError(t, err)
	result, err := ParseVitestPayload(report, DefaultPathPrefix)
	require.NoError(t, err)

	var original map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(vitestFixture), &original))

	got, err := json.Marshal(result.Totals)
	require.NoError(t, err)
	assert.JSONEq(t, string(original["total"]), string(got))

	_, hasTotal := result.Files["total"]
	assert.False(t, hasTotal)
}

func TestParseVitestPayloadMissingTotal(t *testing.T) {
	input := `{"src/a.ts": {
		"lines": {"total": 1, "covered": 1, "pct": 100},
		"functions": {"total": 1, "covered": 1, "pct": 100},
		"branches": {"total": 0, "covered": 0, "pct": 100}
	}}`

	report, err := DecodeVitestPayload(strings.NewReader(input))
	require.NoError(t, err)
	assert.Nil(t, report.Totals)

	result, err := ParseVitestPayload(report, DefaultPathPrefix)
	require.NoError(t, err)
	assert.Equal(t, model.FileMetrics{}, result.Totals)
	assert.Contains(t, result.Files, "src/a.ts")
}

func TestParseVitestPayloadCustomPrefix(t *testing.T) {
	report := &model.VitestReport{PerFile: map[string]model.FileMetrics{
		"/builds/app/src/main.ts": {
			Lines:     metric(10, 5, 50),
			Functions: metric(2, 1, 50),
			Branches:  metric(4, 4, 100),
		},
		"/elsewhere/lib.ts": {
			Lines:     metric(1, 0, 0),
			Functions: metric(1, 0, 0),
			Branches:  metric(0, 0, 100),
		},
	}}

	result, err := ParseVitestPayload(report, "/builds/app/")
	require.NoError(t, err)
	assert.Contains(t, result.Files, "src/main.ts")
	assert.Contains(t, result.Files, "/elsewhere/lib.ts")
	assert.Equal(t, "lib.ts", result.Files["/elsewhere/lib.ts"].FileName)
	assert.Equal(t, 50.0, result.Files["src/main.ts"].LinesPct)
}

func TestParseVitestPayloadMissingGroup(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		field string
	}{
		{
			name:  "lines",
			entry: `{"functions": {"total": 1, "covered": 1, "pct": 100}, "branches": {"total": 1, "covered": 1, "pct": 100}}`,
			field: "lines",
		},
		{
			name:  "functions",
			entry: `{"lines": {"total": 1, "covered": 1, "pct": 100}, "branches": {"total": 1, "covered": 1, "pct": 100}}`,
			field: "functions",
		},
		{
			name:  "branches",
			entry: `{"lines": {"total": 1, "covered": 1, "pct": 100}, "functions": {"total": 1, "covered": 1, "pct": 100}}`,
			field: "branches",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"src/broken.ts": ` + tt.entry + `}`
			_, err := DecodeVitestPayload(strings.NewReader(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingField)

			var serr *StructuralError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, "src/broken.ts", serr.File)
			assert.Equal(t, tt.field, serr.Field)
		})
	}
}

func TestParseVitestPayloadMissingGroupInMemory(t *testing.T) {
	report := &model.VitestReport{PerFile: map[string]model.FileMetrics{
		"ok.ts":  {Lines: metric(1, 1, 100), Functions: metric(1, 1, 100), Branches: metric(1, 1, 100)},
		"bad.ts": {Lines: metric(1, 1, 100)},
	}}

	_, err := ParseVitestPayload(report, "")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "bad.ts")
}

func TestParseVitestPayloadTotalNotValidated(t *testing.T) {
	report, err := DecodeVitestPayload(strings.NewReader(`{"total": {"lines": {"total": 3, "covered": 1, "pct": 33.33}}}`))
	require.NoError(t, err)
	require.NotNil(t, report.Totals)

	result, err := ParseVitestPayload(report, DefaultPathPrefix)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, 33.33, result.Totals.Lines.Pct.Value)
}

func TestParseVitestPayloadNil(t *testing.T) {
	result, err := ParseVitestPayload(nil, DefaultPathPrefix)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, model.FileMetrics{}, result.Totals)
}

func TestDecodeVitestPayloadMalformed(t *testing.T) {
	for _, input := range []string{`null`, `[1, 2]`, `{"a.ts": 3}`, `{"a.ts": {"lines": {"pct": "nope"}}}`} {
		_, err := DecodeVitestPayload(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrMalformedJSON, input)
	}
}

func TestStripPathPrefix(t *testing.T) {
	const prefix = DefaultPathPrefix

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "matching", path: prefix + "js/app/index.ts", want: "js/app/index.ts"},
		{name: "not matching", path: "/tmp/js/app/index.ts", want: "/tmp/js/app/index.ts"},
		{name: "relative", path: "js/app/index.ts", want: "js/app/index.ts"},
		{name: "prefix only", path: prefix, want: ""},
		{name: "prefix in the middle", path: "/x" + prefix + "a.ts", want: "/x" + prefix + "a.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripPathPrefix(tt.path, prefix)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, StripPathPrefix(got, prefix), "stripping twice should be a no-op")
		})
	}

	assert.Equal(t, "a/b", StripPathPrefix("a/b", ""))
}
