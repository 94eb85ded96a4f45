package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
)

// ValidationError aggregates every problem found while loading a catalog
// directory. A non-empty ValidationError aborts the load; the router must
// never operate against an unvalidated snapshot.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed with %d problem(s):\n  %s",
		len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// controlFile mirrors the on-disk JSON shape. version_date is required and
// parsed explicitly; the version string itself is never interpreted as a date.
type controlFile struct {
	ControlID    string     `json:"control_id"`
	Version      string     `json:"version"`
	VersionDate  string     `json:"version_date"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Intent       string     `json:"intent"`
	Keywords     Keywords   `json:"keywords"`
	Queries      []QueryDef `json:"queries"`
	PriorityTier string     `json:"priority_tier"`
}

// Load reads every *.json control file in dir, validates the set, and builds
// an immutable snapshot. Files are processed in sorted name order so that
// declaration order (the final tie-break) is stable across loads.
func Load(dir string) (*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no control files found in %s", dir)
	}

	var problems []string
	var controls []*Control
	seen := make(map[string]string) // control_id -> file
	hash := sha256.New()

	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: read error: %v", name, err))
			continue
		}
		hash.Write(data)

		var cf controlFile
		if err := json.Unmarshal(data, &cf); err != nil {
			problems = append(problems, fmt.Sprintf("%s: JSON parse error: %v", name, err))
			continue
		}

		ctrl, errs := validateControl(&cf)
		if len(errs) > 0 {
			for _, e := range errs {
				problems = append(problems, fmt.Sprintf("%s: %s", name, e))
			}
			continue
		}

		if prev, dup := seen[ctrl.ControlID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate control_id %q (already defined in %s)",
				name, ctrl.ControlID, prev))
			continue
		}
		seen[ctrl.ControlID] = name

		controls = append(controls, ctrl)
		logging.Debugf("Loaded control %q from %s (intent=%s, keywords=%d, queries=%d)",
			ctrl.ControlID, name, ctrl.Intent, len(ctrl.Keywords.All()), len(ctrl.Queries))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	version := fmt.Sprintf("%s-%d", hex.EncodeToString(hash.Sum(nil))[:12], time.Now().Unix())
	snap := NewSnapshot(version, controls)

	logging.Infof("Catalog loaded: %d controls from %s (snapshot=%s)", len(controls), dir, snap.version)
	return snap, nil
}

// validateControl checks the required-field and closed-set invariants for a
// single control. Returns the built Control only when there are no errors.
func validateControl(cf *controlFile) (*Control, []string) {
	var errs []string

	required := []struct {
		name  string
		empty bool
	}{
		{"control_id", cf.ControlID == ""},
		{"version", cf.Version == ""},
		{"version_date", cf.VersionDate == ""},
		{"title", cf.Title == ""},
		{"description", cf.Description == ""},
		{"intent", cf.Intent == ""},
	}
	for _, r := range required {
		if r.empty {
			errs = append(errs, fmt.Sprintf("missing required field: %s", r.name))
		}
	}

	if cf.Intent != "" && !ValidIntents[cf.Intent] {
		errs = append(errs, fmt.Sprintf("unknown intent value: %q", cf.Intent))
	}

	if len(cf.Keywords.EN) == 0 && len(cf.Keywords.TR) == 0 {
		errs = append(errs, "keywords must contain at least one phrase in en or tr")
	}

	if len(cf.Queries) == 0 {
		errs = append(errs, "control has no queries")
	}
	for i, q := range cf.Queries {
		if q.SQL == "" {
			errs = append(errs, fmt.Sprintf("query[%d]: missing sql", i))
		}
	}

	switch cf.PriorityTier {
	case "", TierCritical, TierHealthBundle:
	default:
		errs = append(errs, fmt.Sprintf("unknown priority_tier: %q", cf.PriorityTier))
	}

	var versionDate time.Time
	if cf.VersionDate != "" {
		var err error
		versionDate, err = time.Parse("2006-01-02", cf.VersionDate)
		if err != nil {
			versionDate, err = time.Parse(time.RFC3339, cf.VersionDate)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("version_date %q is not YYYY-MM-DD or RFC3339", cf.VersionDate))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Control{
		ControlID:    cf.ControlID,
		Version:      cf.Version,
		VersionDate:  versionDate,
		Title:        cf.Title,
		Description:  cf.Description,
		Intent:       cf.Intent,
		Keywords:     cf.Keywords,
		Queries:      cf.Queries,
		PriorityTier: cf.PriorityTier,
	}, nil
}
