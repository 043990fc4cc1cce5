package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Settings son las opciones del vendor (qriostrace.yml), separadas del
// descriptor del proyecto. Cada clave se puede sobreescribir por entorno
// con el prefijo QRIOSTRACE_.
type Settings struct {
	Token      string   `mapstructure:"token"`
	Region     string   `mapstructure:"region"`
	Language   string   `mapstructure:"language"`
	Collector  string   `mapstructure:"collector"`
	BuildDir   string   `mapstructure:"buildDir"`
	LayerTable string   `mapstructure:"layerTable"`
	Exclude    []string `mapstructure:"exclude"`
	Debug      bool     `mapstructure:"debug"`
}

// LoadSettings busca qriostrace.yml en el proyecto y en $HOME. El archivo
// es opcional: sin archivo se devuelven los defaults mas el entorno.
func LoadSettings(root string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("qriostrace")
	v.SetConfigType("yml")
	if root != "" {
		v.AddConfigPath(root)
	}
	v.AddConfigPath("$HOME")

	v.SetDefault("collector", DefaultCollector)
	v.SetDefault("buildDir", "build")

	// AutomaticEnv no alcanza: Unmarshal solo ve claves conocidas por el
	// archivo o por defaults, asi que cada clave se liga explicitamente.
	v.SetEnvPrefix("QRIOSTRACE")
	for _, key := range []string{"token", "region", "language", "collector", "buildDir", "layerTable", "debug"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for '%s': %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error parsing settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Settings) Validate() error {
	switch s.Language {
	case "", "nodejs", "typescript", "es6":
	default:
		return fmt.Errorf("language '%s' is invalid. Use nodejs, typescript or es6", s.Language)
	}
	return nil
}

// RequireToken se usa en comandos que publican telemetria de verdad.
func (s *Settings) RequireToken() error {
	if s.Token == "" {
		return fmt.Errorf("no token configured. Set 'token' in qriostrace.yml or QRIOSTRACE_TOKEN")
	}
	return nil
}
