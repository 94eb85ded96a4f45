package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validControlJSON = `{
  "control_id": "concurrent_mgr_health",
  "version": "1.2.0",
  "version_date": "2025-03-15",
  "title": "Concurrent Manager Health",
  "description": "Queue depth and actual/target worker counts per manager.",
  "intent": "conc_mgr",
  "keywords": {
    "en": ["concurrent manager", "pending requests"],
    "tr": ["sağlık durumu", "bekleyen istekler"]
  },
  "queries": [
    {
      "name": "manager_status",
      "sql": "SELECT concurrent_queue_name FROM fnd_concurrent_queues",
      "result_schema": [
        {"name": "concurrent_queue_name", "type": "VARCHAR2"}
      ]
    }
  ],
  "priority_tier": "critical"
}`

func writeCatalogDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadValidCatalog(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{"concurrent_mgr_health.json": validControlJSON})

	snap, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())
	assert.NotEmpty(t, snap.Version())

	c := snap.Get("concurrent_mgr_health")
	require.NotNil(t, c)
	assert.Equal(t, IntentConcMgr, c.Intent)
	assert.Equal(t, TierCritical, c.PriorityTier)
	assert.Equal(t, "2025-03-15", c.VersionDate.Format("2006-01-02"))
	assert.Len(t, c.Keywords.All(), 4)
	assert.Equal(t, 0, c.Order())
}

func TestLoadAssignsDeclarationOrderBySortedFileName(t *testing.T) {
	a := `{"control_id":"a_ctrl","version":"1","version_date":"2025-01-01","title":"A","description":"d","intent":"workflow","keywords":{"en":["workflow queue"]},"queries":[{"name":"q","sql":"SELECT 1 FROM dual"}]}`
	b := `{"control_id":"b_ctrl","version":"1","version_date":"2025-01-01","title":"B","description":"d","intent":"adop","keywords":{"tr":["adop döngüsü"]},"queries":[{"name":"q","sql":"SELECT 1 FROM dual"}]}`
	dir := writeCatalogDir(t, map[string]string{
		"20_second.json": b,
		"10_first.json":  a,
	})

	snap, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, "a_ctrl", snap.Controls()[0].ControlID)
	assert.Equal(t, "b_ctrl", snap.Controls()[1].ControlID)
	assert.Equal(t, 1, snap.Get("b_ctrl").Order())
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		wantProblem string
	}{
		{
			"missing control_id",
			`{"version":"1","version_date":"2025-01-01","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x"]},"queries":[{"name":"q","sql":"SELECT 1"}]}`,
			"missing required field: control_id",
		},
		{
			"missing version_date",
			`{"control_id":"c","version":"1","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x"]},"queries":[{"name":"q","sql":"SELECT 1"}]}`,
			"missing required field: version_date",
		},
		{
			"unknown intent",
			`{"control_id":"c","version":"1","version_date":"2025-01-01","title":"T","description":"d","intent":"networking","keywords":{"en":["x"]},"queries":[{"name":"q","sql":"SELECT 1"}]}`,
			`unknown intent value: "networking"`,
		},
		{
			"no keywords",
			`{"control_id":"c","version":"1","version_date":"2025-01-01","title":"T","description":"d","intent":"conc_mgr","keywords":{},"queries":[{"name":"q","sql":"SELECT 1"}]}`,
			"keywords must contain at least one phrase",
		},
		{
			"no queries",
			`{"control_id":"c","version":"1","version_date":"2025-01-01","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x"]},"queries":[]}`,
			"control has no queries",
		},
		{
			"query without sql",
			`{"control_id":"c","version":"1","version_date":"2025-01-01","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x"]},"queries":[{"name":"q"}]}`,
			"query[0]: missing sql",
		},
		{
			"unknown priority tier",
			`{"control_id":"c","version":"1","version_date":"2025-01-01","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x"]},"queries":[{"name":"q","sql":"SELECT 1"}],"priority_tier":"gold"}`,
			`unknown priority_tier: "gold"`,
		},
		{
			"unparseable version_date",
			`{"control_id":"c","version":"1","version_date":"15.03.2025","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x"]},"queries":[{"name":"q","sql":"SELECT 1"}]}`,
			"is not YYYY-MM-DD or RFC3339",
		},
		{
			"malformed json",
			`{"control_id": `,
			"JSON parse error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeCatalogDir(t, map[string]string{"bad.json": tt.json})

			snap, err := Load(dir)
			require.Error(t, err)
			assert.Nil(t, snap)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
			require.NotEmpty(t, verr.Problems)
			assert.Contains(t, verr.Error(), tt.wantProblem)
		})
	}
}

func TestLoadAggregatesProblemsAcrossFiles(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{
		"one.json": `{"version":"1"}`,
		"two.json": `{"control_id":"c"}`,
	})

	_, err := Load(dir)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	// Both files must be reported, not just the first.
	assert.Contains(t, verr.Error(), "one.json")
	assert.Contains(t, verr.Error(), "two.json")
}

func TestLoadRejectsDuplicateControlID(t *testing.T) {
	dir := writeCatalogDir(t, map[string]string{
		"a.json": validControlJSON,
		"b.json": validControlJSON,
	})

	_, err := Load(dir)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), `duplicate control_id "concurrent_mgr_health"`)
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no control files")
}

func TestLoadRFC3339VersionDate(t *testing.T) {
	j := `{"control_id":"c","version":"1","version_date":"2025-03-15T10:30:00Z","title":"T","description":"d","intent":"conc_mgr","keywords":{"en":["x y"]},"queries":[{"name":"q","sql":"SELECT 1"}]}`
	dir := writeCatalogDir(t, map[string]string{"c.json": j})

	snap, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2025, snap.Get("c").VersionDate.Year())
}
