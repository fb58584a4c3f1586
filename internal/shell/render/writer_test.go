package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/artpar/shipit/internal/core/compose"
	"github.com/artpar/shipit/internal/core/deployment"
)

const sampleProject = `
services:
  web:
    image: nginx:1.25
    ports:
      - "8080:80"
  db:
    image: postgres:16
    environment:
      POSTGRES_DB: app
`

func convert(t *testing.T, mode deployment.Mode) []deployment.Template {
	t.Helper()
	project, err := compose.ParseProject(sampleProject, compose.ParseOptions{ProjectName: "demo"})
	require.NoError(t, err)
	templates, err := deployment.WalkProject(*project, deployment.WalkOptions{Mode: mode})
	require.NoError(t, err)
	return templates
}

// =============================================================================
// Format Tests
// =============================================================================

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("table")
	assert.Error(t, err)
}

func TestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".yml", FormatYAML.Extension())
	assert.Equal(t, ".json", FormatJSON.Extension())
}

// =============================================================================
// Writer Tests
// =============================================================================

func TestWriter_YAMLStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatYAML, &buf).WriteTemplates(convert(t, deployment.ModeConfig)))

	docs := strings.Split(buf.String(), "---\n")
	require.Len(t, docs, 2)

	var first map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(docs[0]), &first))
	assert.Equal(t, "DeploymentConfig", first["kind"])
	assert.Equal(t, "v1", first["apiVersion"])
	assert.Equal(t, "web", first["metadata"].(map[string]any)["name"])

	var second map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(docs[1]), &second))
	assert.Equal(t, "db", second["metadata"].(map[string]any)["name"])
}

func TestWriter_YAMLTaskMode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatYAML, &buf).WriteTemplates(convert(t, deployment.ModeTask)))

	docs := strings.Split(buf.String(), "---\n")
	require.Len(t, docs, 2)
	assert.True(t, strings.HasPrefix(docs[0], "oso_deployment:"))
}

func TestWriter_JSONArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf).WriteTemplates(convert(t, deployment.ModeConfig)))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "DeploymentConfig", out[0]["kind"])
}

func TestWriter_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf).WriteTemplates(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriter_YAMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatYAML, &buf).WriteTemplates(nil))
	assert.Empty(t, buf.String())
}

func TestMarshal_UnsupportedFormat(t *testing.T) {
	_, err := Marshal(Format("toml"), nil)
	assert.Error(t, err)
}

// =============================================================================
// WriteFiles Tests
// =============================================================================

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := WriteFiles(dir, FormatYAML, convert(t, deployment.ModeConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "web.yml"),
		filepath.Join(dir, "db.yml"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "DeploymentConfig", doc["kind"])
}

func TestWriteFiles_JSONObjectPerFile(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteFiles(dir, FormatJSON, convert(t, deployment.ModeTask))
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "web.json"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "oso_deployment")
}

func TestWriteFiles_RejectsUnsafeServiceNames(t *testing.T) {
	for _, name := range []string{"../escape", "nested/web", `..\escape`, "..", "."} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "out")

			_, err := WriteFiles(dir, FormatYAML, []deployment.Template{
				&deployment.TaskParameters{DeploymentName: name},
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot be used as a file name")

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "out", entries[0].Name())

			written, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, written)
		})
	}
}
