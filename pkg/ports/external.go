package ports

import "context"

// ExternalSystem enumerates the campus systems reachable through the
// integration leaf.
type ExternalSystem string

const (
	SystemLMS ExternalSystem = "lms"
	SystemSIS ExternalSystem = "sis"
	SystemCRM ExternalSystem = "crm"
)

// ExternalSystemPort calls one endpoint of an external campus system and
// returns its structured payload.
type ExternalSystemPort interface {
	Call(ctx context.Context, system ExternalSystem, endpoint string, params map[string]any) (map[string]any, error)
}
