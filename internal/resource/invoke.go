package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/logger"
	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// InvocationHandler serves the content endpoint as a directly invoked
// function. The payload carries the caller in userId; the function is not
// reachable from outside the deployment, so that field is trusted.
type InvocationHandler struct {
	service *Service
}

// NewInvocationHandler wraps service for the function runtime.
func NewInvocationHandler(service *Service) *InvocationHandler {
	return &InvocationHandler{service: service}
}

// Handle decodes the proxy-style payload, dispatches it and always answers
// with a proxy-style response; failures are encoded in StatusCode.
func (h *InvocationHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req Request
	body := strings.TrimSpace(event.Body)
	if body == "" {
		body = "{}"
	}
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse(ctx, apperr.ErrInvalidBody.WithDetail("%s", err.Error())), nil
	}
	if strings.TrimSpace(req.UserID) == "" {
		return errorResponse(ctx, ErrMissingUser), nil
	}

	logger.FromContext(ctx).Info("content request", zap.String("action", req.Action), zap.String("resource_id", req.ResourceID))

	result, err := h.service.Handle(ctx, req.UserID, req)
	if err != nil {
		return errorResponse(ctx, err), nil
	}
	return jsonResponse(http.StatusOK, result), nil
}

func errorResponse(ctx context.Context, err error) events.APIGatewayProxyResponse {
	status, body := apperr.Render(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(ctx).Error("content request failed", zap.Int("status", status), zap.Error(err))
	}
	return jsonResponse(status, body)
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"Internal server error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":           "application/json",
			apperr.AllowOriginHeader: "*",
		},
		Body: string(payload),
	}
}
