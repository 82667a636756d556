package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/cover"

	"github.com/chmouel/covdash/internal/model"
)

// Line states derived from profile blocks.
const (
	lineNoStmt    = 0
	lineUncovered = 1
	lineCovered   = 2
)

// ParseGoProfile reads a Go coverage profile and converts it into the same
// line-based report produced by coverage.py, so Go packages can be shown in
// the same table. File names are made relative to the module declared in
// srcRoot/go.mod when one exists.
func ParseGoProfile(profilePath, srcRoot string) (*model.PythonReport, error) {
	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return nil, fmt.Errorf("parsing coverage profile: %w", err)
	}

	modPath, err := ModulePath(srcRoot)
	if err != nil {
		return nil, err
	}
	return goProfileReport(profiles, modPath), nil
}

// DecodeGoProfile is ParseGoProfile for a profile that is already in memory.
// modPath may be empty, in which case file names are kept as-is.
func DecodeGoProfile(r io.Reader, modPath string) (*model.PythonReport, error) {
	profiles, err := cover.ParseProfilesFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing coverage profile: %w", err)
	}
	return goProfileReport(profiles, modPath), nil
}

// ModulePath returns the module path declared in srcRoot/go.mod, or "" when
// there is no go.mod.
func ModulePath(srcRoot string) (string, error) {
	modPath, err := detectModulePath(srcRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("detecting module path: %w", err)
	}
	return modPath, nil
}

func goProfileReport(profiles []*cover.Profile, modPath string) *model.PythonReport {
	report := &model.PythonReport{
		Meta:  map[string]any{"format": string(FormatGo), "mode": profileMode(profiles)},
		Files: make(map[string]model.PythonFileReport, len(profiles)),
	}
	for _, p := range profiles {
		relPath := p.FileName
		if modPath != "" {
			relPath = strings.TrimPrefix(p.FileName, modPath+"/")
		}
		executed, missing := splitLines(computeLineCoverage(p.Blocks))
		report.Files[relPath] = model.PythonFileReport{
			ExecutedLines: executed,
			MissingLines:  missing,
		}
	}
	return report
}

func profileMode(profiles []*cover.Profile) string {
	if len(profiles) == 0 {
		return ""
	}
	return profiles[0].Mode
}

func detectModulePath(srcRoot string) (string, error) {
	goModPath := filepath.Join(srcRoot, "go.mod")
	f, err := os.Open(goModPath) //nolint:gosec // path is from srcRoot argument
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if modPath, found := strings.CutPrefix(line, "module "); found {
			return modPath, nil
		}
	}
	return "", fmt.Errorf("module directive not found in go.mod")
}

// computeLineCoverage maps line numbers to their state. A line is covered if
// any block with statements spanning it ran at least once.
func computeLineCoverage(blocks []cover.ProfileBlock) map[int]int {
	coverage := make(map[int]int)

	for _, b := range blocks {
		if b.NumStmt == 0 {
			continue
		}
		for line := b.StartLine; line <= b.EndLine; line++ {
			if line < 1 {
				continue
			}
			if b.Count > 0 {
				coverage[line] = lineCovered
			} else if coverage[line] == lineNoStmt {
				coverage[line] = lineUncovered
			}
		}
	}
	return coverage
}

func splitLines(coverage map[int]int) (executed, missing []int) {
	executed = []int{}
	missing = []int{}
	for line, state := range coverage {
		switch state {
		case lineCovered:
			executed = append(executed, line)
		case lineUncovered:
			missing = append(missing, line)
		}
	}
	sort.Ints(executed)
	sort.Ints(missing)
	return executed, missing
}
