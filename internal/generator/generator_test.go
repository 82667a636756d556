package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/chmouel/covdash/internal/badge"
	"github.com/chmouel/covdash/internal/model"
	"github.com/chmouel/covdash/internal/render"
)

func sampleTable() *render.Table {
	return render.PythonTable("", []model.FileStat{
		{FileName: "a.py", FilePath: "pkg/a.py", ExecutedLines: []int{1}, MissingLines: []int{2}, TotalLines: 2, CoveragePct: 50},
		{FileName: "b.py", FilePath: "pkg/b.py", ExecutedLines: []int{1, 2}, MissingLines: []int{}, TotalLines: 2, CoveragePct: 100},
	}, model.Summary{TotalFiles: 2, TotalStmts: 4, CoveredStmts: 3, TotalMiss: 1, Coverage: 0.75, CoveragePct: 75})
}

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	outputPath := "/out/coverage.html"

	err := Generate(fs, nil, sampleTable(), outputPath, Options{Thresholds: badge.DefaultThresholds(), SortColumn: -1})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	content, err := afero.ReadFile(fs, outputPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	htmlStr := string(content)

	if !strings.Contains(htmlStr, "<!doctype html>") {
		t.Error("output should contain DOCTYPE")
	}
	if !strings.Contains(htmlStr, "<title>Coverage Report</title>") {
		t.Error("output should contain default title")
	}
	if !strings.Contains(htmlStr, "<style>") {
		t.Error("output should contain embedded CSS")
	}
	if !strings.Contains(htmlStr, "window.COVERAGE_CONFIG") {
		t.Error("output should contain COVERAGE_CONFIG")
	}
	if !strings.Contains(htmlStr, `"sortColumn":-1`) {
		t.Error("output should contain sort configuration")
	}

	for _, want := range []string{"pkg/a.py", "pkg/b.py", "TOTAL", "75.0%"} {
		if !strings.Contains(htmlStr, want) {
			t.Errorf("output should contain %q", want)
		}
	}
	if !strings.Contains(htmlStr, `<tr class="medium">`) {
		t.Error("50% row should be medium")
	}
	if !strings.Contains(htmlStr, `<tr class="high">`) {
		t.Error("100% row should be high")
	}
	if !strings.Contains(htmlStr, `<span class="pill high">75.0%</span>`) {
		t.Error("summary pill should show the footer coverage")
	}
}

func TestGenerateStdout(t *testing.T) {
	for _, path := range []string{"", "-"} {
		var buf bytes.Buffer
		if err := Generate(afero.NewMemMapFs(), &buf, sampleTable(), path, Options{}); err != nil {
			t.Fatalf("Generate(%q) failed: %v", path, err)
		}
		if !strings.Contains(buf.String(), "pkg/a.py") {
			t.Errorf("Generate(%q) should write the report to stdout", path)
		}
	}
}

func TestGenerateEscapesPaths(t *testing.T) {
	tbl := sampleTable()
	tbl.Title = "<b>report</b>"
	tbl.Rows[0][1] = `<script>alert("x")</script>.py`

	var buf bytes.Buffer
	if err := Generate(afero.NewMemMapFs(), &buf, tbl, "-", Options{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, `<script>alert("x")</script>`) {
		t.Error("file paths must be HTML escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("escaped path should be present")
	}
	if !strings.Contains(out, "<title>&lt;b&gt;report&lt;/b&gt;</title>") {
		t.Error("title must be HTML escaped")
	}
}

func TestGenerateReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := Generate(fs, nil, sampleTable(), "/coverage.html", Options{}); err == nil {
		t.Fatal("expected error writing to a read-only filesystem")
	}
}

func TestLevel(t *testing.T) {
	th := badge.DefaultThresholds()
	tests := []struct {
		coverage float64
		want     string
	}{
		{0, "low"},
		{40, "low"},
		{40.1, "medium"},
		{69.9, "medium"},
		{70, "high"},
		{100, "high"},
	}
	for _, tt := range tests {
		if got := Level(tt.coverage, th); got != tt.want {
			t.Errorf("Level(%v) = %q, want %q", tt.coverage, got, tt.want)
		}
	}
}
