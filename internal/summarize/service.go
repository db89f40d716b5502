// Package summarize produces short natural-language summaries of stored files.
package summarize

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/abduss/filevault/internal/apperr"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
	"github.com/abduss/filevault/internal/resource"
	"go.uber.org/zap"
)

const (
	promptPrefix    = "Please provide a concise summary of this document:\n\n"
	truncatedSuffix = "\n\n[Content truncated due to size limit]"
)

// ContentFetcher reads a caller's file as text. The in-process resource
// service and the remote function reader both satisfy it.
type ContentFetcher interface {
	Read(ctx context.Context, ownerID, fileID string) (resource.Content, error)
}

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Request asks for a summary of one of the caller's files.
type Request struct {
	FileID   string `json:"fileId"`
	FileName string `json:"file_name"`
}

// Summary is the result of a summarization.
type Summary struct {
	Summary       string `json:"summary"`
	FileName      string `json:"fileName"`
	ContentLength int    `json:"contentLength"`
	Model         string `json:"model"`
}

// Service coordinates content fetch and generation.
type Service struct {
	content   ContentFetcher
	generator Generator
	maxChars  int
}

// NewService constructs the summarizer. maxChars caps the content sent to the
// generator, counted in characters.
func NewService(content ContentFetcher, generator Generator, maxChars int) *Service {
	return &Service{content: content, generator: generator, maxChars: maxChars}
}

// Summarize fetches the caller's file and asks the generator for a summary.
func (s *Service) Summarize(ctx context.Context, ownerID string, req Request) (Summary, error) {
	if strings.TrimSpace(req.FileID) == "" {
		return Summary{}, ErrMissingFileID
	}
	log := logger.FromContext(ctx).With(zap.String("file_id", req.FileID))

	content, err := s.content.Read(ctx, ownerID, req.FileID)
	if err != nil {
		metrics.Summaries.WithLabelValues("fetch_failed").Inc()
		if _, ok := apperr.As(err); ok {
			return Summary{}, err
		}
		return Summary{}, ErrFetchFailed.Wrap(err)
	}

	text, truncated := Truncate(content.Content, s.maxChars)
	if truncated {
		log.Warn("content truncated", zap.Int("limit", s.maxChars))
	}

	summary, err := s.generator.Generate(ctx, promptPrefix+text)
	if err != nil {
		metrics.Summaries.WithLabelValues("generation_failed").Inc()
		return Summary{}, ErrGeneration.Wrap(err)
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = content.FileName
	}

	metrics.Summaries.WithLabelValues("ok").Inc()
	log.Info("summary generated", zap.Int("content_length", utf8.RuneCountInString(text)))
	return Summary{
		Summary:       summary,
		FileName:      fileName,
		ContentLength: utf8.RuneCountInString(text),
		Model:         s.generator.Model(),
	}, nil
}

// Truncate cuts content to limit characters and marks the cut. A limit of
// zero or less disables the cap.
func Truncate(content string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(content) <= limit {
		return content, false
	}
	runes := []rune(content)
	return string(runes[:limit]) + truncatedSuffix, true
}
