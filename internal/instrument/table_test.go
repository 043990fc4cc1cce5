package instrument

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableWellFormed(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	for _, region := range []string{"us-east-1", "us-west-2", "eu-west-1", "sa-east-1"} {
		assert.Contains(t, table, region)
	}

	for region, runtimes := range table {
		require.NotEmpty(t, runtimes, region)
		for runtime, arn := range runtimes {
			// Cada runtime de la tabla empaquetada debe ser clasificable.
			_, known := runtimeCategories[runtime]
			assert.True(t, known, "runtime desconocido en la tabla: %s", runtime)

			prefix := fmt.Sprintf("arn:aws:lambda:%s:553768241277:layer:qriostrace-", region)
			assert.True(t, strings.HasPrefix(arn, prefix), arn)
		}
	}
}

func TestDefaultTableLookup(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	assert.NotEmpty(t, table.Lookup("us-east-1", "nodejs18.x"))
	assert.Empty(t, table.Lookup("us-east-1", "ruby3.2"))
	assert.Empty(t, table.Lookup("mars-north-1", "nodejs18.x"))
}

func TestLoadTable(t *testing.T) {
	t.Run("reads an external table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layers.yml")
		require.NoError(t, os.WriteFile(path, []byte(`regions:
  us-east-1:
    nodejs18.x: arn:aws:lambda:us-east-1:000000000000:layer:propia:1
`), 0644))

		table, err := LoadTable(path)
		require.NoError(t, err)
		assert.Equal(t, "arn:aws:lambda:us-east-1:000000000000:layer:propia:1",
			table.Lookup("us-east-1", "nodejs18.x"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(t.TempDir(), "no-existe.yml"))
		assert.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layers.yml")
		require.NoError(t, os.WriteFile(path, []byte("regions: [oops"), 0644))
		_, err := LoadTable(path)
		assert.Error(t, err)
	})

	t.Run("empty table rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layers.yml")
		require.NoError(t, os.WriteFile(path, []byte("# nada\n"), 0644))
		_, err := LoadTable(path)
		assert.ErrorContains(t, err, "no regions")
	})
}

func TestRegionsSorted(t *testing.T) {
	table := RegionTable{"us-west-2": nil, "eu-west-1": nil, "sa-east-1": nil}
	assert.Equal(t, []string{"eu-west-1", "sa-east-1", "us-west-2"}, table.Regions())
}
