package assets

import "embed"

//go:embed templates
var Templates embed.FS

//go:embed layers
var Layers embed.FS
