package domain

import "strings"

// Route is the decoded destination of the director's conditional edge.
// Routing markers embedded in classifier free text are the wire contract
// with the completion port; they are decoded exactly once at the routing
// boundary and never re-parsed downstream.
type Route string

const (
	RouteAnalysis      Route = "analysis"
	RouteCommunication Route = "communication"
	RouteManagement    Route = "management"
	RouteIntegration   Route = "integration"
	RouteFinal         Route = "final"
	RouteUnrecognized  Route = "unrecognized"
)

// Routing markers the classifier is instructed to emit.
const (
	MarkerAnalysis      = "ROUTE_TO_ANALYSIS"
	MarkerCommunication = "ROUTE_TO_COMMUNICATION"
	MarkerManagement    = "ROUTE_TO_MANAGEMENT"
	MarkerIntegration   = "ROUTE_TO_INTEGRATION"
	MarkerFinal         = "FINAL_RESPONSE"
)

// markerScan fixes the scan order. First match wins; the order is the
// observed behavior of the deployed classifier contract and is preserved
// literally.
var markerScan = []struct {
	marker string
	route  Route
}{
	{MarkerAnalysis, RouteAnalysis},
	{MarkerCommunication, RouteCommunication},
	{MarkerManagement, RouteManagement},
	{MarkerIntegration, RouteIntegration},
	{MarkerFinal, RouteFinal},
}

// DecodeRoute scans classifier output for exactly one of the five routing
// markers. Text with no recognized marker decodes to RouteUnrecognized; the
// caller must fail safe and terminate the turn.
func DecodeRoute(response string) Route {
	for _, m := range markerScan {
		if strings.Contains(response, m.marker) {
			return m.route
		}
	}
	return RouteUnrecognized
}

// StripFinalMarker removes a leading FINAL_RESPONSE tag (and any whitespace
// that follows it) from classifier output. A marker appearing later in the
// text is part of the text and is left alone.
func StripFinalMarker(response string) string {
	if !strings.HasPrefix(response, MarkerFinal) {
		return response
	}
	trimmed := strings.TrimPrefix(response, MarkerFinal)
	return strings.TrimLeft(trimmed, " \t\n\r")
}

// Agent returns the coordinator node name for a coordinator route, or ""
// for terminal and unrecognized routes.
func (r Route) Agent() string {
	switch r {
	case RouteAnalysis:
		return AgentAnalysis
	case RouteCommunication:
		return AgentCommunication
	case RouteManagement:
		return AgentManagement
	case RouteIntegration:
		return AgentIntegration
	}
	return ""
}
