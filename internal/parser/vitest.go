package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chmouel/covdash/internal/model"
)

// DefaultPathPrefix is the working directory of the CI runner that produces
// the json-summary reports. Stripping it yields repository-relative paths.
const DefaultPathPrefix = "/home/runner/work/gradio/gradio/"

// totalKey is the reserved json-summary entry holding run-wide totals.
const totalKey = "total"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeVitestPayload decodes an istanbul json-summary report, splitting the
// reserved "total" entry from the per-file entries.
func DecodeVitestPayload(r io.Reader) (*model.VitestReport, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &StructuralError{Err: fmt.Errorf("%w: %w", ErrMalformedJSON, err)}
	}
	if raw == nil {
		return nil, &StructuralError{Err: fmt.Errorf("%w: expected an object", ErrMalformedJSON)}
	}

	report := &model.VitestReport{PerFile: make(map[string]model.FileMetrics, len(raw))}
	for _, key := range sortedKeys(raw) {
		var fm model.FileMetrics
		if err := json.Unmarshal(raw[key], &fm); err != nil {
			return nil, &StructuralError{File: key, Err: fmt.Errorf("%w: %w", ErrMalformedJSON, err)}
		}
		if key == totalKey {
			report.Totals = &fm
			continue
		}
		if err := validateMetrics(key, fm); err != nil {
			return nil, err
		}
		report.PerFile[key] = fm
	}
	return report, nil
}

// ParseVitestPayload normalizes a json-summary report. Per-file entries are
// keyed by their path with pathPrefix stripped; the totals are returned
// unchanged, or as the zero value when the report had none.
func ParseVitestPayload(report *model.VitestReport, pathPrefix string) (*model.VitestResult, error) {
	result := &model.VitestResult{Files: map[string]model.VitestFileStat{}}
	if report == nil {
		return result, nil
	}

	for _, key := range sortedKeys(report.PerFile) {
		fm := report.PerFile[key]
		if err := validateMetrics(key, fm); err != nil {
			return nil, err
		}
		clean := StripPathPrefix(key, pathPrefix)
		result.Files[clean] = model.VitestFileStat{
			FileName:         baseName(clean),
			FilePath:         clean,
			LinesTotal:       fm.Lines.Total,
			LinesCovered:     fm.Lines.Covered,
			LinesPct:         fm.Lines.Pct.Value,
			FunctionsTotal:   fm.Functions.Total,
			FunctionsCovered: fm.Functions.Covered,
			FunctionsPct:     fm.Functions.Pct.Value,
			BranchesTotal:    fm.Branches.Total,
			BranchesCovered:  fm.Branches.Covered,
			BranchesPct:      fm.Branches.Pct.Value,
		}
	}

	if report.Totals != nil {
		result.Totals = *report.Totals
	}
	return result, nil
}

// StripPathPrefix removes prefix from the front of path. Paths that do not
// start with prefix are returned unchanged.
func StripPathPrefix(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func validateMetrics(file string, fm model.FileMetrics) error {
	err := validate.Struct(fm)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &StructuralError{File: file, Field: verrs[0].Field(), Err: ErrMissingField}
	}
	return &StructuralError{File: file, Err: err}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
