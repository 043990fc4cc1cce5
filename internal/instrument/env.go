package instrument

import "github.com/qrioso-software/qriostrace/internal/config"

// DefaultEnvironment arma las variables de telemetría que las capas leen
// al arrancar la función.
func DefaultEnvironment(service, stage string, s *config.Settings) map[string]string {
	collector := s.Collector
	if collector == "" {
		collector = config.DefaultCollector
	}

	defaults := map[string]string{
		"QRIOSTRACE_TOKEN":     s.Token,
		"QRIOSTRACE_SERVICE":   service,
		"QRIOSTRACE_STAGE":     stage,
		"QRIOSTRACE_COLLECTOR": collector,
	}
	if s.Debug {
		defaults["QRIOSTRACE_DEBUG"] = "true"
	}
	return defaults
}

// ApplyEnvironment inyecta defaults sin pisar valores ya declarados en el
// descriptor. Las funciones Unsupported no se tocan: no llevan capa que
// lea las variables.
func ApplyEnvironment(records []HandlerRecord, defaults map[string]string) {
	for _, record := range records {
		if record.Category == RuntimeUnsupported {
			continue
		}

		if record.Fn.Environment == nil {
			record.Fn.Environment = make(map[string]string, len(defaults))
		}

		for key, value := range defaults {
			if _, exists := record.Fn.Environment[key]; !exists {
				record.Fn.Environment[key] = value
			}
		}
	}
}
