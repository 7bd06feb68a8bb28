package detector

import (
	"context"
	"fmt"
	"log/slog"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"go-image-labeler/models"
)

type GoogleVisionConfig struct {
	// CredentialsFile points at a service account key. When empty the
	// application default credentials are used.
	CredentialsFile string `json:"credentials_file,omitempty"`
}

// ImageAnnotator is the subset of the Vision client that is used here.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

var _ ImageAnnotator = (*vision.ImageAnnotatorClient)(nil)

// GoogleVisionDetector labels images with Cloud Vision LABEL_DETECTION.
// Vision reports scores in [0,1]; they are scaled to percentages and the
// minimum confidence is applied client side, since the API has no such knob.
type GoogleVisionDetector struct {
	client ImageAnnotator
	closer func() error
}

// NewGoogleVisionDetector creates a new instance of GoogleVisionDetector
func NewGoogleVisionDetector(client ImageAnnotator) *GoogleVisionDetector {
	return &GoogleVisionDetector{client: client}
}

// NewGoogleVisionDetectorFromConfig dials Cloud Vision with the configured
// or default credentials. The returned detector owns the connection.
func NewGoogleVisionDetectorFromConfig(ctx context.Context, config GoogleVisionConfig) (*GoogleVisionDetector, error) {
	var clientOpts []option.ClientOption
	if config.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	slog.Info("Using Google Vision label detector", "credentials_file", config.CredentialsFile)
	return &GoogleVisionDetector{client: client, closer: client.Close}, nil
}

// DetectLabels runs LABEL_DETECTION on a single image
func (d *GoogleVisionDetector) DetectLabels(ctx context.Context, image []byte, opts Options) ([]models.Label, error) {
	batch, err := d.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(opts.MaxLabels)},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(batch.GetResponses()) == 0 {
		return nil, fmt.Errorf("vision api returned no response for the image")
	}

	res := batch.GetResponses()[0]
	if apiErr := res.GetError(); apiErr != nil && apiErr.GetCode() != 0 {
		return nil, fmt.Errorf("vision api error %d: %s", apiErr.GetCode(), apiErr.GetMessage())
	}

	labels := make([]models.Label, 0, len(res.GetLabelAnnotations()))
	for _, a := range res.GetLabelAnnotations() {
		confidence := float64(a.GetScore()) * 100
		if confidence < opts.MinConfidence {
			continue
		}
		labels = append(labels, models.Label{
			Name:       a.GetDescription(),
			Confidence: confidence,
		})
		if opts.MaxLabels > 0 && len(labels) == opts.MaxLabels {
			break
		}
	}
	return labels, nil
}

// Close releases the underlying gRPC connection, if this detector owns one.
func (d *GoogleVisionDetector) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer()
}
