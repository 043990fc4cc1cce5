package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `service: tienda
stage: dev
region: us-west-2
runtime: nodejs18.x
plugins:
  - qriosls-plugin-webpack
functions:
  crear-pedido:
    functionName: crear-pedido
    handler: src/pedidos/index.handler
    code: ./src/pedidos
    memorySize: 256
    timeout: 30
    events:
      - type: http
        path: /pedidos
        method: post
  reporte-diario:
    functionName: reporte-diario
    runtime: python3.12
    handler: app.lambda_handler
    code: ./src/reportes
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qrioso-sls.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tienda", cfg.Service)
	assert.Equal(t, "dev", cfg.Stage)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "nodejs18.x", cfg.Runtime)
	assert.True(t, cfg.HasPlugin("qriosls-plugin-webpack"))
	assert.Len(t, cfg.Functions, 2)
	assert.Equal(t, filepath.Dir(path), cfg.RootPath)

	fn := cfg.Functions["crear-pedido"]
	require.NotNil(t, fn)
	assert.Equal(t, "src/pedidos/index.handler", fn.Handler)
	assert.Empty(t, fn.Layers)
	assert.Empty(t, fn.Environment)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "no-existe.yml"))
		assert.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "service: [broken"))
		assert.Error(t, err)
	})
}

func TestEffectiveRuntime(t *testing.T) {
	cfg := &ServerlessConfig{Runtime: "nodejs20.x"}

	assert.Equal(t, "python3.12", cfg.EffectiveRuntime(&LambdaFunc{Runtime: "python3.12"}))
	assert.Equal(t, "nodejs20.x", cfg.EffectiveRuntime(&LambdaFunc{}))

	cfg.Runtime = ""
	assert.Empty(t, cfg.EffectiveRuntime(&LambdaFunc{}))
}

func TestValidate(t *testing.T) {
	valid := func() *ServerlessConfig {
		cfg, err := Load(writeConfig(t, sampleConfig))
		require.NoError(t, err)
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("service is required", func(t *testing.T) {
		cfg := valid()
		cfg.Service = ""
		assert.ErrorContains(t, cfg.Validate(), "service")
	})

	t.Run("service name restricted to alphanumeric and hyphens", func(t *testing.T) {
		cfg := valid()
		cfg.Service = "tienda_pedidos"
		assert.ErrorContains(t, cfg.Validate(), "invalid")
	})

	t.Run("stage is required", func(t *testing.T) {
		cfg := valid()
		cfg.Stage = ""
		assert.ErrorContains(t, cfg.Validate(), "stage")
	})

	t.Run("at least one function", func(t *testing.T) {
		cfg := valid()
		cfg.Functions = nil
		assert.ErrorContains(t, cfg.Validate(), "function")
	})

	t.Run("function without body fails", func(t *testing.T) {
		cfg := valid()
		cfg.Functions["fantasma"] = nil
		assert.ErrorContains(t, cfg.Validate(), "no body")
	})

	t.Run("runtime may come from the service level", func(t *testing.T) {
		cfg := valid()
		cfg.Functions["crear-pedido"].Runtime = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing runtime everywhere fails", func(t *testing.T) {
		cfg := valid()
		cfg.Runtime = ""
		cfg.Functions["crear-pedido"].Runtime = ""
		assert.ErrorContains(t, cfg.Validate(), "runtime")
	})

	t.Run("memorySize out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Functions["crear-pedido"].MemorySize = 64
		assert.ErrorContains(t, cfg.Validate(), "memorySize")
	})

	t.Run("memorySize zero means provider default", func(t *testing.T) {
		cfg := valid()
		cfg.Functions["crear-pedido"].MemorySize = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("timeout out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Functions["crear-pedido"].Timeout = 1200
		assert.ErrorContains(t, cfg.Validate(), "timeout")
	})

	t.Run("http event needs path and method", func(t *testing.T) {
		cfg := valid()
		cfg.Functions["crear-pedido"].Events[0].Method = ""
		assert.ErrorContains(t, cfg.Validate(), "method")
	})
}

func TestSortedFunctionNames(t *testing.T) {
	cfg := &ServerlessConfig{Functions: map[string]*LambdaFunc{
		"zeta":  {},
		"alfa":  {},
		"medio": {},
	}}

	assert.Equal(t, []string{"alfa", "medio", "zeta"}, cfg.SortedFunctionNames())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg.Functions["crear-pedido"].Layers = append(cfg.Functions["crear-pedido"].Layers,
		"arn:aws:lambda:us-west-2:553768241277:layer:qriostrace-nodejs18x:12")
	cfg.Functions["crear-pedido"].Environment = map[string]string{"QRIOSTRACE_STAGE": "dev"}

	out := filepath.Join(t.TempDir(), "qrioso-sls.instrumented.yml")
	require.NoError(t, cfg.Save(out, "abc123"))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "# qrioso-sls.yml instrumentado por qriostrace"))
	assert.Contains(t, string(raw), "# sha256 del original: abc123")

	back, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Service, back.Service)
	assert.Equal(t,
		[]string{"arn:aws:lambda:us-west-2:553768241277:layer:qriostrace-nodejs18x:12"},
		back.Functions["crear-pedido"].Layers)
	assert.Equal(t, "dev", back.Functions["crear-pedido"].Environment["QRIOSTRACE_STAGE"])
}
