package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaInvoker is the subset of the Lambda client used by LambdaReader.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaReader reads file content through the separately deployed content
// function.
type LambdaReader struct {
	client   LambdaInvoker
	function string
}

// NewLambdaReader constructs a reader invoking function (name or ARN).
func NewLambdaReader(client LambdaInvoker, function string) *LambdaReader {
	return &LambdaReader{client: client, function: function}
}

type invocationPayload struct {
	Body string `json:"body"`
}

// Read invokes resources/read for ownerID. A non-200 answer from the function
// is returned as an error carrying that status and body verbatim.
func (r *LambdaReader) Read(ctx context.Context, ownerID, fileID string) (Content, error) {
	inner, err := json.Marshal(Request{Action: ActionRead, ResourceID: fileID, UserID: ownerID})
	if err != nil {
		return Content{}, apperr.Internal("Content fetch failed", err)
	}
	payload, err := json.Marshal(invocationPayload{Body: string(inner)})
	if err != nil {
		return Content{}, apperr.Internal("Content fetch failed", err)
	}

	out, err := r.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(r.function),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return Content{}, apperr.Upstream("Content fetch failed", 0, fmt.Errorf("invoke %s: %w", r.function, err))
	}
	if out.FunctionError != nil {
		return Content{}, apperr.Upstream("Content fetch failed", 0, fmt.Errorf("function error %s: %s", aws.ToString(out.FunctionError), out.Payload))
	}

	var resp events.APIGatewayProxyResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return Content{}, apperr.Upstream("Content fetch failed", 0, fmt.Errorf("decode function response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var body apperr.Body
		_ = json.Unmarshal([]byte(resp.Body), &body)
		if body.Error == "" {
			body.Error = "Content fetch failed"
		}
		e := apperr.Upstream(body.Error, resp.StatusCode, nil)
		if resp.StatusCode <= 0 {
			e.HTTPStatus = http.StatusInternalServerError
		}
		e.Detail = body.Message
		return Content{}, e
	}

	var content Content
	if err := json.Unmarshal([]byte(resp.Body), &content); err != nil {
		return Content{}, apperr.Upstream("Content fetch failed", 0, fmt.Errorf("decode content: %w", err))
	}
	return content, nil
}
