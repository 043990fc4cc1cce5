// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultCollector es el endpoint de ingesta al que reportan las capas.
const DefaultCollector = "https://in.qriostrace.dev"

type ApiConfig struct {
	Id             string `yaml:"id,omitempty"`
	RootResourceId string `yaml:"rootResourceId,omitempty"`
	Name           string `yaml:"name,omitempty"`
}

type ServerlessConfig struct {
	Service   string                 `yaml:"service"`
	Stage     string                 `yaml:"stage"`
	Region    string                 `yaml:"region,omitempty"`
	Runtime   string                 `yaml:"runtime,omitempty"`
	Plugins   []string               `yaml:"plugins,omitempty"`
	Api       *ApiConfig             `yaml:"api,omitempty"`
	Functions map[string]*LambdaFunc `yaml:"functions"`
	RootPath  string                 `yaml:"-"`
}

type LambdaFunc struct {
	FunctionName string            `yaml:"functionName"`
	Runtime      string            `yaml:"runtime,omitempty"`
	Handler      string            `yaml:"handler"`
	Code         string            `yaml:"code,omitempty"`
	MemorySize   int               `yaml:"memorySize,omitempty"`
	Timeout      int               `yaml:"timeout,omitempty"`
	Layers       []string          `yaml:"layers,omitempty"`
	Environment  map[string]string `yaml:"environment,omitempty"`
	Events       []LambdaEvent     `yaml:"events,omitempty"`
}

type LambdaEvent struct {
	Type     string `yaml:"type"`
	Resource string `yaml:"resource,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Method   string `yaml:"method,omitempty"`
}

func Load(path string) (*ServerlessConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var c ServerlessConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving config path: %w", err)
	}
	c.RootPath = filepath.Dir(abs)

	return &c, nil
}

// Save escribe el descriptor de vuelta a disco. Se usa tras instrumentar
// (capas y variables inyectadas) para que el cambio quede en el proyecto.
// sourceHash, si viene, queda en el encabezado para rastrear de qué
// archivo original salió este descriptor.
func (c *ServerlessConfig) Save(path, sourceHash string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	header := "# qrioso-sls.yml instrumentado por qriostrace. Las capas y variables\n# de entorno agregadas se pueden regenerar con 'qriostrace instrument'.\n"
	if sourceHash != "" {
		header += fmt.Sprintf("# sha256 del original: %s\n", sourceHash)
	}

	if err := os.WriteFile(path, append([]byte(header), out...), 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// EffectiveRuntime resuelve el runtime de una función: el propio si lo
// declara, si no el runtime por defecto del servicio.
func (c *ServerlessConfig) EffectiveRuntime(fn *LambdaFunc) string {
	if fn != nil && fn.Runtime != "" {
		return fn.Runtime
	}
	return c.Runtime
}

// SortedFunctionNames devuelve los nombres de función en orden estable.
// Los mapas de Go no garantizan orden y aquí importa: la salida de los
// comandos y el stack generado deben ser deterministas.
func (c *ServerlessConfig) SortedFunctionNames() []string {
	names := make([]string, 0, len(c.Functions))
	for name := range c.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPlugin reporta si el proyecto declara un plugin de empaquetado.
func (c *ServerlessConfig) HasPlugin(name string) bool {
	for _, p := range c.Plugins {
		if p == name {
			return true
		}
	}
	return false
}

func isValidServiceName(name string) bool {
	// Solo letras, números y guiones
	match, _ := regexp.MatchString("^[a-zA-Z0-9-]+$", name)
	return match
}
