package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load("/nonexistent/path/that/does/not/exist.yaml")
	require.NoError(t, err)
	require.NotNil(t, c)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Информатика", all[0].Name)
	assert.Equal(t, []string{"Тип 1", "Тип 13", "Тип 24"}, all[0].TaskTypes)
}

func TestDefaultIsACopy(t *testing.T) {
	c := Default()
	s, ok := c.Get("Физика")
	require.True(t, ok)
	s.TaskTypes[0] = "changed"

	assert.Equal(t, "Тип 1", DefaultSubjects[2].TaskTypes[0])
}

func TestLoadValidYAML(t *testing.T) {
	const yamlContent = `
subjects:
  - name: Физика
    task_types: ["№ 1", "№ 2", "№ 1"]
  - name: "  English  "
    task_types:
      - essay
      - " "
  - name: Физика
    task_types: ["№ 3"]
  - name: ""
    task_types: ["orphan"]
`
	path := filepath.Join(t.TempDir(), "subjects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0600))

	c, err := Load(path)
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Физика", all[0].Name)
	assert.Equal(t, []string{"№ 1", "№ 2", "№ 3"}, all[0].TaskTypes)
	assert.Equal(t, "English", all[1].Name)
	assert.Equal(t, []string{"essay"}, all[1].TaskTypes)

	assert.Equal(t, []string{"English", "Физика"}, c.Names())

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subjects: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestKnown(t *testing.T) {
	c := Default()
	assert.True(t, c.Known("Математика", "Тип 13"))
	assert.False(t, c.Known("Математика", "Тип 99"))
	assert.False(t, c.Known("Химия", "Тип 1"))
}
