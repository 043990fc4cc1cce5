package engine

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/qrioso-software/qriostrace/internal/config"
)

// Synth construye la app CDK para el descriptor (ya instrumentado) y
// escribe el Cloud Assembly. outdir vacío deja el default de CDK; cuando
// el CDK CLI invoca este app, CDK_OUTDIR viene seteado y se respeta.
func Synth(cfg *config.ServerlessConfig, region, outdir string) error {
	props := &awscdk.AppProps{}
	if outdir != "" {
		props.Outdir = jsii.String(outdir)
	}

	app := awscdk.NewApp(props)

	stackID := fmt.Sprintf("%s-%s", cfg.Service, cfg.Stage)
	NewStack(app, stackID, cfg, &awscdk.Environment{
		Region: jsii.String(region),
	})

	app.Synth(nil)
	return nil
}
