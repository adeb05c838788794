package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/gift-recommender/internal/pipeline"
	"github.com/jonathan/gift-recommender/internal/server/middleware"
	"github.com/jonathan/gift-recommender/internal/types"
)

// Request defaults, matching the CLI
const (
	defaultBudget    = "any"
	defaultChunkSize = pipeline.DefaultChunkSize
)

const welcomeMessage = "Welcome to the Gift Recommender API"

// handleRoot returns the welcome message
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecommend analyzes the posted chat and returns gift ideas
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRecommendRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	requestID := middleware.GetRequestID(r)
	logger := s.logger.With("request_id", requestID)
	logger.Info("Starting analysis", "participant", req.FriendName, "bytes", len(req.Messages))

	result, err := s.analyzer.AnalyzeChat(ctx, req.Messages, req.FriendName, req.Format, req.Budget, req.ChunkSize)
	if err != nil {
		logger.Error("Analysis failed", "error", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	logger.Info("Analysis complete", "ideas", len(result.GiftIdeas), "diagnostics", len(result.Diagnostics))
	s.jsonResponse(w, http.StatusOK, newRecommendResponse(requestID, result))
}

// handleRecommendStream runs an analysis and streams progress via SSE
func (s *Server) handleRecommendStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRecommendRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	requestID := middleware.GetRequestID(r)
	stream, err := newEventStream(w, requestID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	logger := s.logger.With("request_id", requestID)
	logger.Info("Starting streaming analysis", "participant", req.FriendName)

	ctx = pipeline.WithProgress(ctx, func(event pipeline.ProgressEvent) {
		if err := stream.Send(eventStep, event); err != nil {
			logger.Warn("Error writing SSE event", "error", err)
		}
	})

	result, err := s.analyzer.AnalyzeChat(ctx, req.Messages, req.FriendName, req.Format, req.Budget, req.ChunkSize)
	if err != nil {
		logger.Error("Streaming analysis failed", "error", err)
		if err := stream.Fail(err.Error()); err != nil {
			logger.Warn("Error writing SSE failure", "error", err)
		}
		return
	}

	if err := stream.Succeed(newRecommendResponse(requestID, result)); err != nil {
		logger.Warn("Error writing SSE result", "error", err)
	}
}

// decodeRecommendRequest reads, validates and defaults a RecommendRequest
func (s *Server) decodeRecommendRequest(w http.ResponseWriter, r *http.Request) (*types.RecommendRequest, error) {
	if s.cfg.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	}

	var req types.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrBodyTooLarge{Limit: maxErr.Limit}
		}
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}

	req.MyName = strings.TrimSpace(req.MyName)
	req.FriendName = strings.TrimSpace(req.FriendName)
	req.Budget = strings.TrimSpace(req.Budget)
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))

	if err := req.Validate(); err != nil {
		return nil, toValidationError(err)
	}

	if req.Budget == "" {
		req.Budget = defaultBudget
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = defaultChunkSize
	}
	return &req, nil
}

// analysisContext bounds one analysis by the configured request timeout
func (s *Server) analysisContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(parent, s.cfg.RequestTimeout)
	}
	return context.WithCancel(parent)
}

func newRecommendResponse(requestID string, result *types.RecommendationResult) types.RecommendResponse {
	ideas := result.GiftIdeas
	if ideas == nil {
		ideas = []types.GiftIdea{}
	}
	return types.RecommendResponse{
		RequestID:   requestID,
		Notes:       result.Notes,
		GiftIdeas:   ideas,
		Diagnostics: result.Diagnostics,
	}
}

// toValidationError reports the first failed field by its JSON name
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := jsonFieldName(fe.StructField())
	switch fe.Tag() {
	case "required":
		return &ErrValidation{Field: field, Message: "is required"}
	case "min", "gte":
		return &ErrValidation{Field: field, Message: "must be at least " + fe.Param()}
	case "lte", "max":
		return &ErrValidation{Field: field, Message: "must be at most " + fe.Param()}
	case "oneof":
		return &ErrValidation{Field: field, Message: "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")}
	default:
		return &ErrValidation{Field: field, Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
}

func jsonFieldName(structField string) string {
	f, ok := reflect.TypeOf(types.RecommendRequest{}).FieldByName(structField)
	if !ok {
		return structField
	}
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" {
		return name
	}
	return structField
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Error encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
