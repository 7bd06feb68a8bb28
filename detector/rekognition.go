package detector

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"go-image-labeler/models"
)

type RekognitionConfig struct {
	// Region overrides the region from the default AWS config chain.
	Region string `json:"region,omitempty"`
}

// RekognitionAPI is the subset of the Rekognition client that is used here.
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionDetector labels images with Amazon Rekognition DetectLabels.
type RekognitionDetector struct {
	client RekognitionAPI
}

// NewRekognitionDetector creates a new instance of RekognitionDetector
func NewRekognitionDetector(client RekognitionAPI) *RekognitionDetector {
	return &RekognitionDetector{client: client}
}

// NewRekognitionDetectorFromConfig builds a client from the default AWS
// credential chain. It is meant to be called once per process.
func NewRekognitionDetectorFromConfig(ctx context.Context, config RekognitionConfig) (*RekognitionDetector, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	slog.Info("Using Rekognition label detector", "region", awsCfg.Region)
	return NewRekognitionDetector(rekognition.NewFromConfig(awsCfg)), nil
}

// DetectLabels calls DetectLabels with the image passed inline as bytes
func (d *RekognitionDetector) DetectLabels(ctx context.Context, image []byte, opts Options) ([]models.Label, error) {
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(int32(opts.MaxLabels)),
		MinConfidence: aws.Float32(float32(opts.MinConfidence)),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]models.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, models.Label{
			Name:       aws.ToString(l.Name),
			Confidence: widenConfidence(aws.ToFloat32(l.Confidence)),
		})
	}
	return labels, nil
}

// widenConfidence converts via the shortest decimal that round-trips the
// float32, so 99.12345 stays 99.12345 instead of 99.12345123291016.
func widenConfidence(c float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(c), 'g', -1, 32), 64)
	if err != nil {
		return float64(c)
	}
	return v
}
