package instrument

import "github.com/qrioso-software/qriostrace/internal/config"

// DefaultRegion aplica cuando ni settings ni el descriptor declaran una.
const DefaultRegion = "us-east-1"

// ResolveRegion decide la región de despliegue: settings del vendor, si
// no la del descriptor del proyecto, si no el default.
func ResolveRegion(cfg *config.ServerlessConfig, s *config.Settings) string {
	if s != nil && s.Region != "" {
		return s.Region
	}
	if cfg.Region != "" {
		return cfg.Region
	}
	return DefaultRegion
}

// FilterExcluded descarta funciones listadas en settings exclude,
// preservando el orden del resto.
func FilterExcluded(records []HandlerRecord, names []string) []HandlerRecord {
	if len(names) == 0 {
		return records
	}

	excluded := make(map[string]bool, len(names))
	for _, name := range names {
		excluded[name] = true
	}

	kept := make([]HandlerRecord, 0, len(records))
	for _, record := range records {
		if !excluded[record.Name] {
			kept = append(kept, record)
		}
	}
	return kept
}

// Apply corre la tubería completa sobre un descriptor cargado: clasificar,
// filtrar exclusiones, fusionar capas e inyectar variables de telemetría.
// Devuelve los registros sobrevivientes para reporte. Todo síncrono y en
// memoria; el único estado mutado son los descriptores de cfg.
func Apply(cfg *config.ServerlessConfig, s *config.Settings, table RegionTable) []HandlerRecord {
	records := Classify(cfg.Functions, Options{
		DefaultRuntime: cfg.Runtime,
		Dialect:        s.Language,
		Plugins:        cfg.Plugins,
		Root:           cfg.RootPath,
	})

	records = FilterExcluded(records, s.Exclude)

	ApplyLayers(ResolveRegion(cfg, s), records, table)
	ApplyEnvironment(records, DefaultEnvironment(cfg.Service, cfg.Stage, s))

	return records
}
