package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// SetupVariablesFile writes content to integration-tests/variables.yaml inside a fresh temporary
// directory and returns the file path. The directory is removed when the test ends.
func SetupVariablesFile(t *testing.T, content string) string {
	dir := filepath.Join(t.TempDir(), "integration-tests")
	require.NoError(t, os.MkdirAll(dir, 0755))

	path := filepath.Join(dir, "variables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

// ReadVariables decodes the variables file at path into a plain map.
func ReadVariables(t *testing.T, path string) map[string]interface{} {
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	values := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(data, &values))
	return values
}
