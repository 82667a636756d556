package parser

import (
	"bytes"
	"encoding/json"
)

// Format identifies the schema of a coverage report.
type Format string

const (
	FormatUnknown Format = ""
	FormatPython  Format = "python"
	FormatVitest  Format = "vitest"
	FormatGo      Format = "go"
)

// DetectFormat sniffs the schema of a raw report. Go profiles start with a
// mode line, coverage.py reports carry a "files" object and json-summary
// reports are objects whose entries hold a "lines" metric.
func DetectFormat(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("mode:")) {
		return FormatGo
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return FormatUnknown
	}
	if _, ok := probe["files"]; ok {
		return FormatPython
	}
	for _, v := range probe {
		var entry map[string]json.RawMessage
		if json.Unmarshal(v, &entry) != nil {
			continue
		}
		if _, ok := entry["lines"]; ok {
			return FormatVitest
		}
	}
	return FormatUnknown
}
