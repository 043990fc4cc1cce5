package instrument

import "github.com/qrioso-software/qriostrace/internal/config"

// RuntimeCategory clasifica una función por su runtime efectivo y, para
// Node, por el dialecto de fuente detectado junto al handler.
type RuntimeCategory string

const (
	RuntimeNode           RuntimeCategory = "nodejs"
	RuntimeNodeTypeScript RuntimeCategory = "nodejs-typescript"
	RuntimeNodeES6        RuntimeCategory = "nodejs-es6"
	RuntimePython         RuntimeCategory = "python"
	RuntimeUnsupported    RuntimeCategory = "unsupported"
)

// WebpackPlugin es el plugin de empaquetado del host que emite bundles ES6.
const WebpackPlugin = "qriosls-plugin-webpack"

// runtimeCategories mapea nombres de runtime Lambda a su categoría base.
// Lo que no aparece aquí queda Unsupported (java, dotnet, go, typos...).
var runtimeCategories = map[string]RuntimeCategory{
	"nodejs16.x": RuntimeNode,
	"nodejs18.x": RuntimeNode,
	"nodejs20.x": RuntimeNode,
	"nodejs22.x": RuntimeNode,
	"python3.9":  RuntimePython,
	"python3.10": RuntimePython,
	"python3.11": RuntimePython,
	"python3.12": RuntimePython,
}

// HandlerRecord es el resultado de clasificar una función. Fn apunta al
// descriptor original del proyecto: el merger de capas y el inyector de
// variables mutan a través de él, el record en sí no cambia.
type HandlerRecord struct {
	Name        string
	Category    RuntimeCategory
	RuntimeName string
	Fn          *config.LambdaFunc
}

// Options controla una pasada de clasificación.
type Options struct {
	DefaultRuntime string   // runtime declarado a nivel de servicio
	Dialect        string   // fuerza el dialecto Node: nodejs | typescript | es6
	Plugins        []string // plugins del host (webpack implica ES6)
	Root           string   // base para sondear archivos junto al handler
}
