// internal/instrument/classify.go
package instrument

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qrioso-software/qriostrace/internal/config"
)

// Classify recorre las funciones en orden estable de nombre y produce un
// registro por función. Nunca falla: un runtime desconocido se marca
// Unsupported y se conserva, un handler sin método se descarta en
// silencio. No muta las funciones.
func Classify(functions map[string]*config.LambdaFunc, opts Options) []HandlerRecord {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]HandlerRecord, 0, len(functions))
	for _, name := range names {
		fn := functions[name]
		if fn == nil {
			// Entrada vacía en el YAML ("nombre:" sin cuerpo).
			continue
		}

		runtime := fn.Runtime
		if runtime == "" {
			runtime = opts.DefaultRuntime
		}

		category, known := runtimeCategories[runtime]
		if !known {
			records = append(records, HandlerRecord{Name: name, Category: RuntimeUnsupported, RuntimeName: runtime, Fn: fn})
			continue
		}

		// Solo Node tiene dialectos que sondear.
		if category != RuntimeNode {
			records = append(records, HandlerRecord{Name: name, Category: category, RuntimeName: runtime, Fn: fn})
			continue
		}

		modulePath, ok := splitHandler(fn.Handler)
		if !ok {
			// Sin método no hay forma segura de envolver el handler.
			continue
		}

		records = append(records, HandlerRecord{
			Name:        name,
			Category:    nodeDialect(modulePath, opts),
			RuntimeName: runtime,
			Fn:          fn,
		})
	}

	return records
}

// splitHandler separa "src/api/index.handler" en ruta de módulo y método.
// El método va tras el último punto; si "contiene" un separador de ruta el
// punto era parte de un directorio y el handler no declara método.
func splitHandler(handler string) (string, bool) {
	idx := strings.LastIndex(handler, ".")
	if idx <= 0 || idx == len(handler)-1 {
		return "", false
	}

	method := handler[idx+1:]
	if strings.ContainsAny(method, `/\`) {
		return "", false
	}

	return handler[:idx], true
}

func nodeDialect(modulePath string, opts Options) RuntimeCategory {
	// Dialecto forzado por settings: sin sondeo.
	switch opts.Dialect {
	case "typescript":
		return RuntimeNodeTypeScript
	case "es6":
		return RuntimeNodeES6
	case "nodejs":
		return RuntimeNode
	}

	category := RuntimeNode

	if fileExists(opts.Root, modulePath+".es.js") || fileExists(opts.Root, modulePath+".mjs") {
		category = RuntimeNodeES6
	}
	for _, plugin := range opts.Plugins {
		if plugin == WebpackPlugin {
			category = RuntimeNodeES6
		}
	}

	// Un fuente .ts junto al artefacto manda sobre la señal ES6: si el
	// proyecto escribe TypeScript, ese es el wrapper que corresponde.
	if fileExists(opts.Root, modulePath+".ts") {
		category = RuntimeNodeTypeScript
	}

	return category
}

func fileExists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, rel))
	return err == nil
}
