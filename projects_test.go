package attackforge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/tphakala/go-attackforge"
)

// projectBody renders a project record holding every counter, with value i+1
// for the i-th counter.
func projectBody(t *testing.T, omit ...string) string {
	t.Helper()
	skip := make(map[string]bool, len(omit))
	for _, name := range omit {
		skip[name] = true
	}

	project := map[string]any{"project_name": "Pentest Q3"}
	for i, name := range attackforge.ProjectCounterNames() {
		if !skip[name] {
			project["project_"+name] = i + 1
		}
	}

	data, err := json.Marshal(map[string]any{"project": project})
	require.NoError(t, err)
	return string(data)
}

func TestProjectService_Stats(t *testing.T) {
	t.Run("copies every counter", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/ss/project/P1", r.URL.Path)
			writeJSON(t, w, projectBody(t))
		})

		stats, err := client.Projects.Stats(context.Background(), "P1")
		require.NoError(t, err)

		names := attackforge.ProjectCounterNames()
		require.Len(t, names, 18)
		m := stats.Map()
		require.Len(t, m, 18)
		for i, name := range names {
			assert.Equal(t, int64(i+1), m[name], name)
		}
		assert.Equal(t, int64(1), stats.TotalVulnerabilities)
		assert.Equal(t, int64(18), stats.InfoClosedVulnerabilities)
	})

	t.Run("reports every missing counter", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, projectBody(t, "high_open_vulnerabilities", "info_vulnerabilities"))
		})

		stats, err := client.Projects.Stats(context.Background(), "P1")
		assert.Nil(t, stats)

		var malformed *attackforge.MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "project", malformed.Resource)

		var paths []string
		for _, e := range multierr.Errors(malformed.Err) {
			var missing *attackforge.MissingFieldError
			require.ErrorAs(t, e, &missing)
			paths = append(paths, missing.Path)
		}
		assert.Equal(t, []string{
			"project.project_high_open_vulnerabilities",
			"project.project_info_vulnerabilities",
		}, paths)
	})

	t.Run("non-numeric counter", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			body := projectBody(t, "total_vulnerabilities")
			var doc map[string]map[string]any
			require.NoError(t, json.Unmarshal([]byte(body), &doc))
			doc["project"]["project_total_vulnerabilities"] = "many"
			data, err := json.Marshal(doc)
			require.NoError(t, err)
			writeJSON(t, w, string(data))
		})

		_, err := client.Projects.Stats(context.Background(), "P1")
		var missing *attackforge.MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "project.project_total_vulnerabilities", missing.Path)
	})

	t.Run("missing project object", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, `{"status":"ok"}`)
		})

		_, err := client.Projects.Stats(context.Background(), "P1")
		var malformed *attackforge.MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("not found", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.Projects.Stats(context.Background(), "missing")
		var notFound *attackforge.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestProjectService_ExportRaw(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/ss/project/P1/report/raw", r.URL.Path)
			assert.Equal(t, "true", r.URL.Query().Get("excludeBinaries"))
			writeJSON(t, w, "{\n  \"project\": {\"name\": \"Q3\"},\n  \"vulnerabilities\": []\n}")
		})

		report, err := client.Projects.ExportRaw(context.Background(), "P1")
		require.NoError(t, err)
		assert.Equal(t, `{"project":{"name":"Q3"},"vulnerabilities":[]}`, report)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, "not json")
		})

		_, err := client.Projects.ExportRaw(context.Background(), "P1")
		var malformed *attackforge.MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("empty project ID", func(t *testing.T) {
		client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := client.Projects.ExportRaw(context.Background(), "")
		var validationErr *attackforge.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}
