package mock

import (
	"context"
	"fmt"

	"github.com/campushq/concierge/pkg/ports"
)

// ExternalSystems implements ports.ExternalSystemPort with canned payloads
// per system and endpoint.
type ExternalSystems struct{}

// NewExternalSystems creates the canned external-system client.
func NewExternalSystems() *ExternalSystems {
	return &ExternalSystems{}
}

// Call returns a deterministic payload for the known system endpoints.
// Unknown systems fail hard; unknown endpoints return an in-band error
// payload, matching how the real gateways respond.
func (e *ExternalSystems) Call(ctx context.Context, system ports.ExternalSystem, endpoint string, params map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch system {
	case ports.SystemLMS:
		return lmsPayload(endpoint, params), nil
	case ports.SystemSIS:
		return sisPayload(endpoint, params), nil
	case ports.SystemCRM:
		return crmPayload(endpoint, params), nil
	default:
		return nil, fmt.Errorf("unknown external system: %s", system)
	}
}

func lmsPayload(endpoint string, params map[string]any) map[string]any {
	switch endpoint {
	case "courses":
		return map[string]any{
			"status": "success",
			"courses": []map[string]any{
				{"id": "BIO-201", "title": "Genetics", "enrolled": 42},
				{"id": "NUR-110", "title": "Foundations of Nursing", "enrolled": 61},
				{"id": "BUS-305", "title": "Managerial Accounting", "enrolled": 38},
			},
		}
	case "assignments":
		return map[string]any{
			"status": "success",
			"assignments": []map[string]any{
				{"course": "BIO-201", "title": "Lab Report 3", "due": "2026-09-12"},
				{"course": "BUS-305", "title": "Case Study", "due": "2026-09-15"},
			},
		}
	default:
		return map[string]any{"status": "error", "message": "unknown LMS endpoint: " + endpoint}
	}
}

func sisPayload(endpoint string, params map[string]any) map[string]any {
	switch endpoint {
	case "enrollment":
		return map[string]any{
			"status":   "success",
			"term":     "Fall 2026",
			"enrolled": 6412,
			"by_level": map[string]any{"undergraduate": 5120, "graduate": 1292},
		}
	case "registration_status":
		return map[string]any{
			"status": "success",
			"open":   true,
			"closes": "2026-09-05",
		}
	default:
		return map[string]any{"status": "error", "message": "unknown SIS endpoint: " + endpoint}
	}
}

func crmPayload(endpoint string, params map[string]any) map[string]any {
	switch endpoint {
	case "tickets":
		return map[string]any{
			"status": "success",
			"open_tickets": []map[string]any{
				{"id": 1042, "subject": "Transcript request", "priority": "normal"},
				{"id": 1057, "subject": "Housing question", "priority": "high"},
			},
		}
	default:
		return map[string]any{"status": "error", "message": "unknown CRM endpoint: " + endpoint}
	}
}

var _ ports.ExternalSystemPort = (*ExternalSystems)(nil)
