package resolver

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// Client consulta el API de Lambda para comparar las capas fijadas en la
// tabla contra lo último publicado por QriosTrace en una región.
type Client struct {
	client *lambda.Client
	region string
}

func NewClient(region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &Client{client: lambda.NewFromConfig(cfg), region: region}, nil
}

// LayerARN es un ARN de capa versionado, descompuesto.
// arn:aws:lambda:us-east-1:553768241277:layer:qriostrace-nodejs18x:24
type LayerARN struct {
	Region  string
	Account string
	Name    string
	Version int64
}

func ParseLayerARN(arn string) (LayerARN, error) {
	parts := strings.Split(arn, ":")
	if len(parts) != 8 || parts[0] != "arn" || parts[2] != "lambda" || parts[5] != "layer" {
		return LayerARN{}, fmt.Errorf("'%s' is not a versioned layer ARN", arn)
	}

	version, err := strconv.ParseInt(parts[7], 10, 64)
	if err != nil {
		return LayerARN{}, fmt.Errorf("layer ARN '%s' has a non-numeric version: %w", arn, err)
	}

	return LayerARN{Region: parts[3], Account: parts[4], Name: parts[6], Version: version}, nil
}

// LatestLayerVersion devuelve la última versión publicada de una capa y
// su fecha. ListLayerVersions pagina con NextMarker como el resto del API
// de Lambda, así que se recorre completo.
func (c *Client) LatestLayerVersion(layerName string) (int64, *time.Time, error) {
	var latest int64
	var published *time.Time
	var nextMarker *string

	for {
		result, err := c.client.ListLayerVersions(context.TODO(), &lambda.ListLayerVersionsInput{
			LayerName: aws.String(layerName),
			Marker:    nextMarker,
		})
		if err != nil {
			return 0, nil, fmt.Errorf("error listing versions for layer %s: %w", layerName, err)
		}

		for _, v := range result.LayerVersions {
			if v.Version > latest {
				latest = v.Version
				published = parseCreatedDate(v.CreatedDate)
			}
		}

		if result.NextMarker == nil || *result.NextMarker == "" {
			break
		}
		nextMarker = result.NextMarker
	}

	if latest == 0 {
		return 0, nil, fmt.Errorf("layer %s has no published versions in %s", layerName, c.region)
	}

	return latest, published, nil
}

// parseCreatedDate tolera los dos formatos que devuelve Lambda: RFC3339 y
// el ISO8601 con zona sin dos puntos ("+0000") que RFC3339 no acepta.
func parseCreatedDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999-0700"} {
		if ts, err := time.Parse(layout, *s); err == nil {
			return &ts
		}
	}
	return nil
}

// LayerStatus compara un ARN fijado contra lo publicado en la región.
type LayerStatus struct {
	Region        string
	Runtime       string
	LayerName     string
	PinnedVersion int64
	LatestVersion int64
	PublishedAt   *time.Time
	Err           error
}

func (s LayerStatus) UpToDate() bool {
	return s.Err == nil && s.PinnedVersion == s.LatestVersion
}

// CheckRegion revisa cada capa fijada para la región, en orden estable de
// runtime. Los errores por capa quedan en el status para que el reporte
// los muestre sin abortar el resto de la pasada.
func (c *Client) CheckRegion(runtimes map[string]string) []LayerStatus {
	names := make([]string, 0, len(runtimes))
	for runtime := range runtimes {
		names = append(names, runtime)
	}
	sort.Strings(names)

	statuses := make([]LayerStatus, 0, len(names))
	for _, runtime := range names {
		status := LayerStatus{Region: c.region, Runtime: runtime}

		parsed, err := ParseLayerARN(runtimes[runtime])
		if err != nil {
			status.Err = err
			statuses = append(statuses, status)
			continue
		}
		status.LayerName = parsed.Name
		status.PinnedVersion = parsed.Version

		latest, published, err := c.LatestLayerVersion(parsed.Name)
		if err != nil {
			status.Err = err
			statuses = append(statuses, status)
			continue
		}
		status.LatestVersion = latest
		status.PublishedAt = published

		statuses = append(statuses, status)
	}

	return statuses
}
