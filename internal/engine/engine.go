package engine

import (
	"fmt"
	"strings"

	"github.com/qrioso-software/qriostrace/internal/config"
	"github.com/qrioso-software/qriostrace/internal/util"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

func NewStack(scope constructs.Construct, id string, cfg *config.ServerlessConfig, env *awscdk.Environment) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &awscdk.StackProps{Env: env})

	// API única por servicio (simple). Solo se crea si alguna función
	// declara eventos http: un RestApi sin métodos rompe el synth.
	var api awsapigateway.RestApi
	for _, fn := range cfg.Functions {
		for _, ev := range fn.Events {
			if strings.EqualFold(ev.Type, "http") {
				api = awsapigateway.NewRestApi(stack, jsii.String(fmt.Sprintf("%s-api", cfg.Service)), &awsapigateway.RestApiProps{
					DeployOptions: &awsapigateway.StageOptions{
						StageName: jsii.String(cfg.Stage),
					},
				})
			}
			if api != nil {
				break
			}
		}
		if api != nil {
			break
		}
	}

	for _, logicalName := range cfg.SortedFunctionNames() {
		fn := cfg.Functions[logicalName]

		functionName := util.ResolveVars(fn.FunctionName, cfg.Service, cfg.Stage)
		codePath := util.ResolveVars(fn.Code, cfg.Service, cfg.Stage)

		runtime := toLambdaRuntime(cfg.EffectiveRuntime(fn))
		if runtime == nil {
			runtime = awslambda.Runtime_PROVIDED_AL2()
		}

		props := &awslambda.FunctionProps{
			FunctionName: jsii.String(functionName),
			Runtime:      runtime,
			Handler:      jsii.String(fn.Handler),
			Code:         awslambda.AssetCode_FromAsset(jsii.String(codePath), nil),
		}
		if fn.MemorySize > 0 {
			props.MemorySize = jsii.Number(float64(fn.MemorySize))
		}
		if fn.Timeout > 0 {
			props.Timeout = awscdk.Duration_Seconds(jsii.Number(float64(fn.Timeout)))
		}

		// Capas del vendor ya fusionadas en el descriptor por el
		// instrumentador. Se referencian por ARN, nunca se publican aquí.
		if len(fn.Layers) > 0 {
			layers := make([]awslambda.ILayerVersion, 0, len(fn.Layers))
			for i, arn := range fn.Layers {
				layers = append(layers, awslambda.LayerVersion_FromLayerVersionArn(stack,
					jsii.String(fmt.Sprintf("%s-layer-%d", logicalName, i)), jsii.String(arn)))
			}
			props.Layers = &layers
		}

		if len(fn.Environment) > 0 {
			environment := make(map[string]*string, len(fn.Environment))
			for key, value := range fn.Environment {
				environment[key] = jsii.String(value)
			}
			props.Environment = &environment
		}

		lambdaFn := awslambda.NewFunction(stack, jsii.String(logicalName), props)

		for _, ev := range fn.Events {
			switch strings.ToLower(ev.Type) {
			case "http":
				res := api.Root().ResourceForPath(jsii.String(ev.Path))
				res.AddMethod(jsii.String(strings.ToUpper(ev.Method)),
					awsapigateway.NewLambdaIntegration(lambdaFn, nil), nil)
			// TODO: SQS/S3/EventBridge aquí
			default:
				// ignorar o loguear para no romper
			}
		}
	}

	return stack
}
