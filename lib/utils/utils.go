package utils

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
)

// Handler is the signature every API Gateway entrypoint implements.
type Handler func(req *events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Action is a handler body that only reports failure; the response
// shape is fixed and carries no detail back to the caller.
type Action func(req *events.APIGatewayProxyRequest) error

// HandleProxy wraps an action with the fixed success/error response
// contract: 200 {"message":"success"} or 500 {"message":"error"}.
// Error detail goes to the log and the notification channel only.
func HandleProxy(action Action) Handler {
	return func(req *events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		LogUsageForHttpRequest(req)
		if err := action(req); err != nil {
			log.Print(err.Error())
			return ErrorResponse(), nil
		}
		return SuccessResponse(), nil
	}
}

func SuccessResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"message":"success"}`,
	}
}

func ErrorResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 500,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"message":"error"}`,
	}
}

// RequestBody returns the decoded request body, handling API Gateway's
// base64 wrapping of binary-safe payloads.
func RequestBody(req *events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", fmt.Errorf("decoding request body: %w", err)
	}
	return string(decoded), nil
}

func LogUsageForHttpRequest(req *events.APIGatewayProxyRequest) {
	log.Print("REPORT RequestId: " + req.RequestContext.RequestID + " Function: " + os.Getenv("AWS_LAMBDA_FUNCTION_NAME") + " Path: " + req.Path + " Resource: " + req.Resource)
}

func LogUsageForLambda() {
	log.Print("REPORT Function: " + os.Getenv("AWS_LAMBDA_FUNCTION_NAME"))
}
