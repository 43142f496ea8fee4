package domain_test

import (
	"testing"

	"github.com/campushq/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestDecodeRoute(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     domain.Route
	}{
		{"analysis", "ROUTE_TO_ANALYSIS\nLooking at the data request.", domain.RouteAnalysis},
		{"communication", "ROUTE_TO_COMMUNICATION", domain.RouteCommunication},
		{"management", "Sure. ROUTE_TO_MANAGEMENT", domain.RouteManagement},
		{"integration", "ROUTE_TO_INTEGRATION please", domain.RouteIntegration},
		{"final", "FINAL_RESPONSE Hello! How can I help?", domain.RouteFinal},
		{"none", "I am not sure what you mean.", domain.RouteUnrecognized},
		{"empty", "", domain.RouteUnrecognized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.DecodeRoute(tc.response))
		})
	}
}

func TestDecodeRoute_FirstMatchWins(t *testing.T) {
	// Scan order is fixed: analysis beats communication even when the
	// communication marker appears first in the text.
	response := "ROUTE_TO_COMMUNICATION or maybe ROUTE_TO_ANALYSIS"
	assert.Equal(t, domain.RouteAnalysis, domain.DecodeRoute(response))

	// FINAL_RESPONSE is scanned last and loses to any coordinator marker.
	response = "FINAL_RESPONSE but actually ROUTE_TO_INTEGRATION"
	assert.Equal(t, domain.RouteIntegration, domain.DecodeRoute(response))
}

func TestStripFinalMarker(t *testing.T) {
	assert.Equal(t, "Hello there!", domain.StripFinalMarker("FINAL_RESPONSE Hello there!"))
	assert.Equal(t, "Hello there!", domain.StripFinalMarker("FINAL_RESPONSE\n\nHello there!"))

	// A marker that is not a prefix is content, not protocol.
	assert.Equal(t, "Reply with FINAL_RESPONSE next time.",
		domain.StripFinalMarker("Reply with FINAL_RESPONSE next time."))

	// Bare marker yields an empty reply.
	assert.Equal(t, "", domain.StripFinalMarker("FINAL_RESPONSE"))
}

func TestRouteAgent(t *testing.T) {
	assert.Equal(t, domain.AgentAnalysis, domain.RouteAnalysis.Agent())
	assert.Equal(t, domain.AgentCommunication, domain.RouteCommunication.Agent())
	assert.Equal(t, domain.AgentManagement, domain.RouteManagement.Agent())
	assert.Equal(t, domain.AgentIntegration, domain.RouteIntegration.Agent())
	assert.Empty(t, domain.RouteFinal.Agent())
	assert.Empty(t, domain.RouteUnrecognized.Agent())
}
