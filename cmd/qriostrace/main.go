package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aws/jsii-runtime-go"
	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/qrioso-software/qriostrace/internal/assets"
	"github.com/qrioso-software/qriostrace/internal/config"
	"github.com/qrioso-software/qriostrace/internal/engine"
	"github.com/qrioso-software/qriostrace/internal/instrument"
	"github.com/qrioso-software/qriostrace/internal/resolver"
	"github.com/qrioso-software/qriostrace/internal/util"
	"github.com/qrioso-software/qriostrace/internal/watch"
)

// loadProject carga el descriptor del proyecto y los settings del vendor;
// casi todos los comandos arrancan así.
func loadProject(cfgPath string) (*config.ServerlessConfig, *config.Settings, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	settings, err := config.LoadSettings(cfg.RootPath)
	if err != nil {
		return nil, nil, err
	}

	return cfg, settings, nil
}

func loadLayerTable(settings *config.Settings) (instrument.RegionTable, error) {
	if settings.LayerTable != "" {
		return instrument.LoadTable(settings.LayerTable)
	}
	return instrument.DefaultTable()
}

// printPreview muestra cómo quedaría cada función, sin tocar nada.
func printPreview(cfg *config.ServerlessConfig, settings *config.Settings, table instrument.RegionTable) {
	region := instrument.ResolveRegion(cfg, settings)

	records := instrument.Classify(cfg.Functions, instrument.Options{
		DefaultRuntime: cfg.Runtime,
		Dialect:        settings.Language,
		Plugins:        cfg.Plugins,
		Root:           cfg.RootPath,
	})
	records = instrument.FilterExcluded(records, settings.Exclude)

	fmt.Printf("Servicio %s (stage %s, región %s)\n\n", cfg.Service, cfg.Stage, region)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "FUNCTION\tRUNTIME\tCATEGORY\tLAYER")
	for _, rec := range records {
		runtime := rec.RuntimeName
		if runtime == "" {
			runtime = "-"
		}

		layer := "-"
		if rec.Category != instrument.RuntimeUnsupported {
			if arn := table.Lookup(region, rec.RuntimeName); arn != "" {
				layer = arn
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.Name, runtime, rec.Category, layer)
	}
	w.Flush()

	// El clasificador descarta en silencio handlers sin método; acá se
	// avisa para que un typo no pase desapercibido.
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		seen[rec.Name] = true
	}
	excluded := make(map[string]bool, len(settings.Exclude))
	for _, name := range settings.Exclude {
		excluded[name] = true
	}
	for _, name := range cfg.SortedFunctionNames() {
		if seen[name] || excluded[name] {
			continue
		}
		fn := cfg.Functions[name]
		if fn == nil {
			log.Printf("⚠️ %s: función vacía en el YAML, se ignora", name)
			continue
		}
		log.Printf("⚠️ %s: handler '%s' sin método, no se instrumenta", name, fn.Handler)
	}
}

func main() {
	defer jsii.Close()

	var cfgPath string
	var awsProfile string
	var requireApproval string

	root := &cobra.Command{
		Use:   "qriostrace",
		Short: "QriosTrace: instrumentación de proyectos qriosls (capas + telemetría)",
	}

	token := ""
	region := instrument.DefaultRegion

	// ===== qriostrace init =====
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Crea qriostrace.yml de ejemplo en el proyecto",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat("qriostrace.yml"); err == nil {
				return fmt.Errorf("ya existe qriostrace.yml en el directorio")
			}

			file, err := assets.Templates.ReadFile("templates/qriostrace.tmpl.yml")
			if err != nil {
				return fmt.Errorf("error reading template: %w", err)
			}

			t := template.Must(template.New("settings").Parse(string(file)))
			f, err := os.Create("qriostrace.yml")
			if err != nil {
				return err
			}
			defer f.Close()

			data := struct {
				Token  string
				Region string
			}{token, region}

			if err := t.Execute(f, data); err != nil {
				return err
			}
			_ = os.MkdirAll("build", 0755)
			log.Println("✅ Creado qriostrace.yml y carpeta build/")
			return nil
		},
	}
	initCmd.Flags().StringVar(&token, "token", token, "Token de QriosTrace")
	initCmd.Flags().StringVar(&region, "region", region, "Región AWS (ej. us-east-1)")

	// ===== qriostrace validate =====
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Valida el descriptor del proyecto y los settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			return cfg.Validate()
		},
	}
	validateCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")

	// ===== qriostrace preview =====
	var watchMode bool
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Muestra clasificación y capas sin modificar nada",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, settings, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			table, err := loadLayerTable(settings)
			if err != nil {
				return err
			}

			printPreview(cfg, settings, table)

			if !watchMode {
				return nil
			}

			watcher, err := watch.New(cfgPath, func() {
				cfg, settings, err := loadProject(cfgPath)
				if err != nil {
					log.Printf("❌ %v", err)
					return
				}
				table, err := loadLayerTable(settings)
				if err != nil {
					log.Printf("❌ %v", err)
					return
				}
				log.Println("🔨 Configuración cambiada, reclasificando...")
				printPreview(cfg, settings, table)
			})
			if err != nil {
				return err
			}
			defer watcher.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			log.Println("🛑 Watch detenido")
			return nil
		},
	}
	previewCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")
	previewCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Reclasifica al guardar el archivo")

	// ===== qriostrace instrument =====
	var inPlace bool
	instrumentCmd := &cobra.Command{
		Use:   "instrument",
		Short: "Fusiona capas e inyecta variables de telemetría en el descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, settings, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			table, err := loadLayerTable(settings)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(cfgPath)
			if err != nil {
				return fmt.Errorf("error reading config file: %w", err)
			}
			sourceHash := util.Sha256Hash(string(raw))

			if settings.Token == "" {
				log.Println("⚠️ Sin token configurado: las funciones quedan instrumentadas pero sin reportar")
			}

			records := instrument.Apply(cfg, settings, table)

			instrumented := 0
			for _, rec := range records {
				if rec.Category != instrument.RuntimeUnsupported {
					instrumented++
				}
			}

			buildDir := filepath.Join(cfg.RootPath, settings.BuildDir)
			if err := os.MkdirAll(buildDir, 0755); err != nil {
				return fmt.Errorf("error creating build dir: %w", err)
			}

			outPath := filepath.Join(buildDir, "qrioso-sls.instrumented.yml")
			if inPlace {
				// Backup del original antes de pisarlo.
				if err := util.CopyFile(cfgPath, buildDir); err != nil {
					return fmt.Errorf("error backing up config: %w", err)
				}
				outPath = cfgPath
			}

			if err := cfg.Save(outPath, sourceHash); err != nil {
				return err
			}

			log.Printf("✅ %d de %d funciones instrumentadas -> %s", instrumented, len(cfg.Functions), outPath)
			return nil
		},
	}
	instrumentCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")
	instrumentCmd.Flags().BoolVar(&inPlace, "in-place", false, "Reescribe qrioso-sls.yml (backup en buildDir)")

	// ===== qriostrace cdkapp (oculto) =====
	// Entry point que el CDK CLI invoca vía CDK_APP. Instrumenta en
	// memoria y sintetiza: el descriptor en disco no se toca.
	cdkAppCmd := &cobra.Command{
		Use:    "cdkapp",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, settings, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			table, err := loadLayerTable(settings)
			if err != nil {
				return err
			}

			instrument.Apply(cfg, settings, table)

			outdir := os.Getenv("CDK_OUTDIR") // CDK define esta var al invocar el app
			return engine.Synth(cfg, instrument.ResolveRegion(cfg, settings), outdir)
		},
	}
	cdkAppCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")

	// ===== qriostrace synth =====
	// Genera Cloud Assembly en ./cdk.out SIN escribir cdk.json
	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "Genera cdk.out (Cloud Assembly) instrumentado",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validar config temprano para fallar rápido
			cfg, _, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if _, err := exec.LookPath("cdk"); err != nil {
				return fmt.Errorf("cdk CLI no encontrado. Instala con: npm install -g aws-cdk")
			}

			ex := exec.Command("cdk", "synth", "--output", "cdk.out")
			ex.Env = append(os.Environ(),
				"CDK_APP=qriostrace cdkapp --config "+cfgPath,
			)
			ex.Stdout = os.Stdout
			ex.Stderr = os.Stderr

			if err := ex.Run(); err != nil {
				return fmt.Errorf("error en cdk synth: %w", err)
			}
			log.Println("✅ Synth listo en cdk.out/")
			return nil
		},
	}
	synthCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")

	// ===== qriostrace deploy =====
	// Deja que CDK haga synth+deploy invocando nuestro cdkapp (consistente con synth)
	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Despliega el stack instrumentado usando CDK CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := exec.LookPath("cdk"); err != nil {
				return fmt.Errorf("cdk CLI no encontrado. Instala con: npm i -g aws-cdk")
			}

			// Validación previa del YAML
			cfg, settings, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			// Sin token la capa arranca pero no reporta: no tiene sentido desplegar.
			if err := settings.RequireToken(); err != nil {
				return err
			}

			cmdArgs := []string{"deploy"}
			if requireApproval != "" {
				cmdArgs = append(cmdArgs, "--require-approval", requireApproval)
			}
			if awsProfile != "" {
				cmdArgs = append(cmdArgs, "--profile", awsProfile)
			}

			ex := exec.Command("cdk", cmdArgs...)
			ex.Env = append(os.Environ(),
				"CDK_APP=qriostrace cdkapp --config "+cfgPath,
			)
			ex.Stdout = os.Stdout
			ex.Stderr = os.Stderr

			log.Println("🚀 Ejecutando:", "cdk", cmdArgs)
			return ex.Run()
		},
	}
	deployCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")
	deployCmd.Flags().StringVar(&awsProfile, "profile", "", "AWS profile")
	deployCmd.Flags().StringVar(&requireApproval, "require-approval", "", "never|any-change|broadening")

	// ===== qriostrace diff =====
	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Diff del stack instrumentado con CDK CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := exec.LookPath("cdk"); err != nil {
				return fmt.Errorf("cdk CLI no encontrado. Instala con: npm i -g aws-cdk")
			}

			cfg, _, err := loadProject(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ex := exec.Command("cdk", "diff")
			ex.Env = append(os.Environ(),
				"CDK_APP=qriostrace cdkapp --config "+cfgPath,
			)
			ex.Stdout = os.Stdout
			ex.Stderr = os.Stderr
			return ex.Run()
		},
	}
	diffCmd.Flags().StringVarP(&cfgPath, "config", "c", "qrioso-sls.yml", "Ruta del YAML")

	// ===== qriostrace layers =====
	var checkRegions []string
	layersCmd := &cobra.Command{
		Use:   "layers",
		Short: "Compara las capas fijadas contra lo último publicado",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(".")
			if err != nil {
				return err
			}
			table, err := loadLayerTable(settings)
			if err != nil {
				return err
			}

			regions := checkRegions
			if len(regions) == 0 {
				regions = table.Regions()
			}

			sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
			sp.Suffix = fmt.Sprintf(" Consultando capas en %d regiones ...", len(regions))
			sp.Start()

			// Una goroutine por región, resultados en slice preasignado.
			results := make([]struct {
				statuses []resolver.LayerStatus
				err      error
				region   string
			}, len(regions))

			var wg sync.WaitGroup
			for i, r := range regions {
				wg.Add(1)
				go func(idx int, r string) {
					defer wg.Done()
					results[idx].region = r

					runtimes := table[r]
					if len(runtimes) == 0 {
						results[idx].err = fmt.Errorf("no hay capas fijadas para la región %s", r)
						return
					}

					client, err := resolver.NewClient(r)
					if err != nil {
						results[idx].err = err
						return
					}
					results[idx].statuses = client.CheckRegion(runtimes)
				}(i, r)
			}
			wg.Wait()
			sp.Stop()

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "REGION\tRUNTIME\tLAYER\tPINNED\tLATEST\tPUBLISHED\tSTATUS")

			outdated := 0
			for _, res := range results {
				if res.err != nil {
					log.Printf("❌ %s: %v", res.region, res.err)
					continue
				}
				for _, st := range res.statuses {
					published := "-"
					if st.PublishedAt != nil {
						published = humanize.Time(*st.PublishedAt)
					}

					status := "OK"
					switch {
					case st.Err != nil:
						status = "ERROR"
					case !st.UpToDate():
						status = "OUTDATED"
						outdated++
					}

					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
						st.Region, st.Runtime, st.LayerName, st.PinnedVersion, st.LatestVersion, published, status)
				}
			}
			w.Flush()

			if outdated > 0 {
				log.Printf("⚠️ %d capas fijadas tienen una versión más nueva publicada", outdated)
			} else {
				log.Println("✅ Todas las capas fijadas están al día")
			}
			return nil
		},
	}
	layersCmd.Flags().StringSliceVar(&checkRegions, "regions", nil, "Regiones a revisar (default: toda la tabla)")

	// ===== qriostrace clean =====
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Borra el contenido de buildDir y cdk.out",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(".")
			if err != nil {
				return err
			}

			for _, dir := range []string{settings.BuildDir, "cdk.out"} {
				if err := util.RemoveContents(dir); err != nil {
					return err
				}
			}

			log.Printf("🧹 Limpio: %s/ y cdk.out/", settings.BuildDir)
			return nil
		},
	}

	// ===== qriostrace doctor =====
	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verifica requisitos del entorno",
		Run: func(cmd *cobra.Command, args []string) {
			check := func(bin string) {
				if _, err := exec.LookPath(bin); err != nil {
					log.Printf("❌ %s no encontrado", bin)
				} else {
					log.Printf("✅ %s OK", bin)
				}
			}
			check("node")
			check("cdk")

			// prueba credenciales AWS (simple)
			var out bytes.Buffer
			ex := exec.Command("aws", "sts", "get-caller-identity")
			ex.Stdout = &out
			if err := ex.Run(); err != nil {
				log.Printf("❌ AWS creds no válidas o AWS CLI no instalado")
			} else {
				log.Printf("✅ AWS creds OK: %s", out.String())
			}

			settings, err := config.LoadSettings(".")
			if err != nil {
				log.Printf("❌ Settings: %v", err)
				return
			}
			if settings.Token == "" {
				log.Printf("⚠️ Sin token de QriosTrace (qriostrace.yml o QRIOSTRACE_TOKEN)")
			} else {
				log.Printf("✅ Token configurado")
			}

			if table, err := loadLayerTable(settings); err != nil {
				log.Printf("❌ Tabla de capas: %v", err)
			} else {
				log.Printf("✅ Tabla de capas: %d regiones", len(table))
			}
		},
	}

	// Registrar comandos
	root.AddCommand(initCmd, validateCmd, previewCmd, instrumentCmd, synthCmd,
		deployCmd, diffCmd, layersCmd, cleanCmd, doctorCmd, cdkAppCmd)

	// Ejecutar CLI
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
