package detector

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/require"
)

type fakeAnnotator struct {
	batch *visionpb.BatchAnnotateImagesRequest
	req   *visionpb.AnnotateImageRequest
	res   *visionpb.AnnotateImageResponse
	empty bool
	err   error
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.batch = req
	if len(req.GetRequests()) > 0 {
		f.req = req.GetRequests()[0]
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return &visionpb.BatchAnnotateImagesResponse{}, nil
	}
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{f.res},
	}, nil
}

func TestGoogleVisionDetector_BuildsLabelDetectionRequest(t *testing.T) {
	fake := &fakeAnnotator{res: &visionpb.AnnotateImageResponse{}}
	d := NewGoogleVisionDetector(fake)

	_, err := d.DetectLabels(context.Background(), []byte("ABC"), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, fake.batch.GetRequests(), 1)
	require.Equal(t, []byte("ABC"), fake.req.GetImage().GetContent())
	require.Len(t, fake.req.GetFeatures(), 1)
	require.Equal(t, visionpb.Feature_LABEL_DETECTION, fake.req.GetFeatures()[0].GetType())
	require.Equal(t, int32(10), fake.req.GetFeatures()[0].GetMaxResults())
}

func TestGoogleVisionDetector_ScalesAndFiltersScores(t *testing.T) {
	fake := &fakeAnnotator{res: &visionpb.AnnotateImageResponse{
		LabelAnnotations: []*visionpb.EntityAnnotation{
			{Description: "Cat", Score: 0.98},
			{Description: "Whiskers", Score: 0.5},
			{Description: "Mammal", Score: 0.75},
		},
	}}
	d := NewGoogleVisionDetector(fake)

	labels, err := d.DetectLabels(context.Background(), []byte{0x1}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, labels, 2)
	require.Equal(t, "Cat", labels[0].Name)
	require.InDelta(t, 98.0, labels[0].Confidence, 0.001)
	require.Equal(t, "Mammal", labels[1].Name)
	require.InDelta(t, 75.0, labels[1].Confidence, 0.001)
}

func TestGoogleVisionDetector_CapsAtMaxLabels(t *testing.T) {
	fake := &fakeAnnotator{res: &visionpb.AnnotateImageResponse{
		LabelAnnotations: []*visionpb.EntityAnnotation{
			{Description: "a", Score: 0.9},
			{Description: "b", Score: 0.9},
			{Description: "c", Score: 0.9},
		},
	}}
	d := NewGoogleVisionDetector(fake)

	labels, err := d.DetectLabels(context.Background(), []byte{0x1}, Options{MaxLabels: 2, MinConfidence: 70})
	require.NoError(t, err)
	require.Len(t, labels, 2)
	require.Equal(t, "a", labels[0].Name)
	require.Equal(t, "b", labels[1].Name)
}

func TestGoogleVisionDetector_PropagatesError(t *testing.T) {
	d := NewGoogleVisionDetector(&fakeAnnotator{err: errors.New("rpc error: code = PermissionDenied")})

	_, err := d.DetectLabels(context.Background(), []byte{0x1}, DefaultOptions())
	require.ErrorContains(t, err, "PermissionDenied")
}

func TestGoogleVisionDetector_CloseWithoutOwnedClient(t *testing.T) {
	d := NewGoogleVisionDetector(&fakeAnnotator{})
	require.NoError(t, d.Close())
}

func TestGoogleVisionDetector_EmptyBatchResponse(t *testing.T) {
	d := NewGoogleVisionDetector(&fakeAnnotator{empty: true})

	labels, err := d.DetectLabels(context.Background(), []byte{0x1}, DefaultOptions())
	require.Nil(t, labels)
	require.ErrorContains(t, err, "no response")
}

func TestGoogleVisionDetector_NilLabelAnnotations(t *testing.T) {
	d := NewGoogleVisionDetector(&fakeAnnotator{res: &visionpb.AnnotateImageResponse{}})

	labels, err := d.DetectLabels(context.Background(), []byte{0x1}, DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, labels)
	require.Empty(t, labels)
}
