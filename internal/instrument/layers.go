package instrument

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/qrioso-software/qriostrace/internal/assets"
)

// RegionTable mapea región -> runtime -> ARN de capa. Una entrada ausente
// significa que QriosTrace no publica capa para esa combinación.
type RegionTable map[string]map[string]string

type layerFile struct {
	Regions RegionTable `yaml:"regions"`
}

// DefaultTable carga la tabla de capas empaquetada en el binario.
func DefaultTable() (RegionTable, error) {
	raw, err := assets.Layers.ReadFile("layers/layers.yml")
	if err != nil {
		return nil, fmt.Errorf("error reading bundled layer table: %w", err)
	}
	return parseTable(raw)
}

// LoadTable lee una tabla externa (settings layerTable), mismo formato.
func LoadTable(path string) (RegionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading layer table: %w", err)
	}
	return parseTable(raw)
}

func parseTable(raw []byte) (RegionTable, error) {
	var f layerFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("error parsing layer table: %w", err)
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("layer table has no regions")
	}
	return f.Regions, nil
}

// Regions devuelve las regiones de la tabla en orden estable.
func (t RegionTable) Regions() []string {
	regions := make([]string, 0, len(t))
	for region := range t {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// Lookup devuelve el ARN para (región, runtime), o "" si no hay capa.
func (t RegionTable) Lookup(region, runtime string) string {
	return t[region][runtime]
}

// ApplyLayers agrega a cada función la capa del vendor para su runtime en
// la región dada. La mutación de Fn.Layers es el único efecto. Región sin
// entrada en la tabla: pasada completa sin efecto. Función Unsupported,
// sin runtime o sin mapeo: se salta. Un ARN ya presente no se repite, así
// que aplicar dos veces deja la lista igual.
func ApplyLayers(region string, records []HandlerRecord, table RegionTable) {
	runtimes, ok := table[region]
	if !ok {
		return
	}

	for _, record := range records {
		if record.Category == RuntimeUnsupported || record.RuntimeName == "" {
			continue
		}

		arn, ok := runtimes[record.RuntimeName]
		if !ok {
			continue
		}

		if !containsString(record.Fn.Layers, arn) {
			record.Fn.Layers = append(record.Fn.Layers, arn)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
