package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	dbHealth := s.checkDatabase(ctx)
	components["database"] = dbHealth
	if dbHealth.Status == "unhealthy" {
		overall = "unhealthy"
	}

	searchHealth := s.checkSearchIndex()
	components["search"] = searchHealth
	if searchHealth.Status == "unhealthy" {
		overall = "unhealthy"
	} else if searchHealth.Status == "degraded" && overall == "healthy" {
		overall = "degraded"
	}

	if overall == "unhealthy" {
		s.logger.Warn("health check failed", "components", components)
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDatabase pings the SQL database.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.health == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "database not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := s.health.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database ping failed",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkSearchIndex verifies the Bleve index is accessible.
// An empty index is fine: there may simply be no books yet.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "search index not configured",
		}
	}

	start := time.Now()
	docCount, err := s.services.Search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: formatDocCount(docCount),
	}
}

func formatDocCount(n uint64) string {
	if n == 1 {
		return "1 indexed book"
	}
	return strconv.FormatUint(n, 10) + " indexed books"
}
