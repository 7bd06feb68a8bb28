package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"go-image-labeler/labeling"
	"go-image-labeler/models"
)

type apiGatewayHandler func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// newLambdaHandler adapts HTTP API (payload v2) and function URL events.
// It never returns an error so the runtime always sees a proper response.
func newLambdaHandler(handler *labeling.Handler) apiGatewayHandler {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp := handler.Handle(ctx, models.RequestEnvelope{
			Method:          event.RequestContext.HTTP.Method,
			Body:            event.Body,
			IsBase64Encoded: event.IsBase64Encoded,
		})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}, nil
	}
}

func startLambda(handler *labeling.Handler) {
	lambda.Start(newLambdaHandler(handler))
}
