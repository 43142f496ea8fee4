package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/plan"
	"github.com/campushq/concierge/pkg/ports"
	"github.com/campushq/concierge/pkg/recipients"
)

// Leaves bundles the specialist ports the coordinators dispatch to.
type Leaves struct {
	Data       ports.DataQueryPort
	Chart      ports.ChartPort
	Mail       ports.MailPort
	Mutation   ports.MutationPort
	External   ports.ExternalSystemPort
	Recipients *recipients.Resolver
}

// analysisPlan is the typed shape of the analysis planner's output.
type analysisPlan struct {
	QueryTask          string `plan:"query_task"`
	NeedsVisualization bool   `plan:"needs_visualization"`
	ChartTask          string `plan:"chart_task"`
}

// AnalysisProfile builds the data-analysis coordinator: query, optional
// chart, summarize.
func AnalysisProfile(leaves Leaves) Profile {
	schema := plan.Schema{
		Name: "analysis_plan",
		Fields: []plan.Field{
			{Name: "query_task", Kind: plan.String, Default: "Retrieve the records relevant to the request"},
			{Name: "needs_visualization", Kind: plan.Bool, Default: false},
			{Name: "chart_task", Kind: plan.String, Default: ""},
		},
	}

	return Profile{
		Agent:      domain.AgentAnalysis,
		PlanPrompt: analysisPlanPrompt,
		Schema:     schema,
		Dispatch: func(ctx context.Context, state *domain.TurnState, p plan.Plan) (string, error) {
			var ap analysisPlan
			if err := p.Decode(&ap); err != nil {
				return "", fmt.Errorf("decode analysis plan: %w", err)
			}

			result, err := leaves.Data.Query(ctx, ap.QueryTask)
			if err != nil {
				return "", fmt.Errorf("data query: %w", err)
			}
			state.AppendStep(domain.NewStep("sql_agent", "execute_query", ap.QueryTask, result))

			if result.Failed() {
				// An in-band SQL failure ends the dispatch early; the user
				// still gets a synthesized explanation, not an apology.
				return "The database query failed: " + result.Err, nil
			}

			outcome := fmt.Sprintf("The query returned %d rows with columns %s.",
				len(result.Rows), strings.Join(result.Columns, ", "))

			// A plan may ask for a chart, but one is only rendered when the
			// turn-level hint or a keyword re-check of the input agrees.
			if ap.NeedsVisualization && (state.VisualizationRequested || wantsVisualization(state.UserInput)) {
				chartTask := ap.ChartTask
				if chartTask == "" {
					chartTask = ap.QueryTask
				}
				chart, err := leaves.Chart.Render(ctx, chartTask, result.Rows, result.Columns)
				if err != nil {
					return "", fmt.Errorf("chart render: %w", err)
				}
				state.Visualization = &domain.Visualization{
					ImageData:   chart.ImageBytes,
					ImageType:   chart.ImageType,
					ChartType:   chart.ChartType,
					Explanation: chart.Explanation,
				}
				state.AppendStep(domain.NewStep("chart_agent", "create_chart", chartTask, chart.Explanation))
				outcome += " A " + chart.ChartType + " chart was generated."
			}

			return outcome, nil
		},
		SynthesisPrompt: analysisSynthesisPrompt,
		Apology:         "I apologize, but the data analysis could not be completed right now. Please try again.",
	}
}

// communicationPlan is the typed shape of the communication planner's
// output.
type communicationPlan struct {
	Type           string `plan:"communication_type"`
	RecipientQuery string `plan:"recipient_query"`
	Subject        string `plan:"subject"`
	Content        string `plan:"content"`
	Priority       string `plan:"priority"`
}

// CommunicationProfile builds the communication coordinator: resolve
// recipients, deliver, summarize. Unrecognized communication types fall
// back to email, the schema default.
func CommunicationProfile(leaves Leaves) Profile {
	schema := plan.Schema{
		Name: "communication_plan",
		Fields: []plan.Field{
			{Name: "communication_type", Kind: plan.String, Default: "email"},
			{Name: "recipient_query", Kind: plan.String, Default: ""},
			{Name: "subject", Kind: plan.String, Default: "University Communication"},
			{Name: "content", Kind: plan.String, Default: ""},
			{Name: "priority", Kind: plan.String, Default: "medium"},
		},
	}

	return Profile{
		Agent:      domain.AgentCommunication,
		PlanPrompt: communicationPlanPrompt,
		Schema:     schema,
		Dispatch: func(ctx context.Context, state *domain.TurnState, p plan.Plan) (string, error) {
			var cp communicationPlan
			if err := p.Decode(&cp); err != nil {
				return "", fmt.Errorf("decode communication plan: %w", err)
			}

			query := cp.RecipientQuery
			if query == "" {
				query = state.UserInput
			}

			resolved, err := leaves.Recipients.Resolve(ctx, query, state)
			if err != nil {
				return "", fmt.Errorf("recipient resolution: %w", err)
			}

			commType := cp.Type
			switch commType {
			case "notification", "sms":
				// Delivered through the same transport; the channel is kept
				// in the audit trail.
			default:
				commType = "email"
			}

			body := cp.Content
			if body == "" {
				body = state.UserInput
			}

			sent, err := leaves.Mail.Send(ctx, resolved.Addresses, cp.Subject, body, cp.Priority)
			if err != nil {
				return "", fmt.Errorf("mail send: %w", err)
			}

			// Message bodies never enter the step ledger.
			state.AppendStep(domain.NewStep(domain.AgentCommunication, "send_"+commType,
				fmt.Sprintf("Email content (%d recipients, subject: %s)", len(resolved.Addresses), cp.Subject),
				sent.Message))

			outcome := fmt.Sprintf("Delivered a %s to %d recipients with status %s.",
				commType, len(resolved.Addresses), sent.Status)
			if resolved.UsedFallback {
				outcome += " Recipient lookup fell back to the " + string(resolved.Tier) + " mailbox."
			}
			return outcome, nil
		},
		SynthesisPrompt: communicationSynthesisPrompt,
		Apology:         "I apologize, but the message could not be sent right now. Please try again.",
	}
}

// managementPlan is the typed shape of the management planner's output.
type managementPlan struct {
	Operation string         `plan:"operation"`
	Table     string         `plan:"table"`
	Data      map[string]any `plan:"data"`
	Condition string         `plan:"condition"`
	Count     int            `plan:"count"`
}

// ManagementProfile builds the data-management coordinator: one validated
// write, or synthetic record generation.
func ManagementProfile(leaves Leaves) Profile {
	schema := plan.Schema{
		Name: "management_plan",
		Fields: []plan.Field{
			{Name: "operation", Kind: plan.String, Default: "insert"},
			{Name: "table", Kind: plan.String, Default: "Person"},
			{Name: "data", Kind: plan.Object, Default: map[string]any{}},
			{Name: "condition", Kind: plan.String, Default: ""},
			{Name: "count", Kind: plan.Int, Default: 0},
		},
	}

	return Profile{
		Agent:      domain.AgentManagement,
		PlanPrompt: managementPlanPrompt,
		Schema:     schema,
		Dispatch: func(ctx context.Context, state *domain.TurnState, p plan.Plan) (string, error) {
			var mp managementPlan
			if err := p.Decode(&mp); err != nil {
				return "", fmt.Errorf("decode management plan: %w", err)
			}

			switch mp.Operation {
			case "update":
				return executeMutation(ctx, leaves, state, ports.MutationUpdate, mp.Table, mp.Data, mp.Condition)
			case "delete":
				return executeMutation(ctx, leaves, state, ports.MutationDelete, mp.Table, nil, mp.Condition)
			case "generate":
				return generateRecords(ctx, leaves, state, mp.Table, mp.Count)
			default:
				// Includes "insert" and anything unrecognized.
				return executeMutation(ctx, leaves, state, ports.MutationInsert, mp.Table, mp.Data, "")
			}
		},
		SynthesisPrompt: managementSynthesisPrompt,
		Apology:         "I apologize, but the record change could not be completed right now. Please try again.",
	}
}

func executeMutation(ctx context.Context, leaves Leaves, state *domain.TurnState, op ports.MutationOp, table string, data map[string]any, condition string) (string, error) {
	result, err := leaves.Mutation.Execute(ctx, op, table, data, condition)
	if err != nil {
		return "", fmt.Errorf("mutation: %w", err)
	}

	// Row data stays out of the ledger; only the shape is recorded.
	state.AppendStep(domain.NewStep(domain.AgentManagement, "execute_"+string(op),
		fmt.Sprintf("%s on %s (%d fields, condition: %q)", op, table, len(data), condition),
		mutationOutcome(result)))

	if result.Err != "" {
		return "The " + string(op) + " was rejected: " + result.Err, nil
	}
	return fmt.Sprintf("The %s on %s affected %d rows.", op, table, result.AffectedRows), nil
}

func mutationOutcome(result ports.MutationResult) string {
	if result.Err != "" {
		return "rejected: " + result.Err
	}
	return fmt.Sprintf("affected %d rows", result.AffectedRows)
}

// generateRecords inserts count synthetic student records. The generated
// values are deterministic placeholders, not real personal data.
func generateRecords(ctx context.Context, leaves Leaves, state *domain.TurnState, table string, count int) (string, error) {
	if count <= 0 {
		count = 5
	}
	if count > 100 {
		count = 100
	}

	inserted := 0
	for i := 1; i <= count; i++ {
		record := map[string]any{
			"FirstName":    fmt.Sprintf("Test%d", i),
			"LastName":     "Generated",
			"EmailAddress": fmt.Sprintf("generated.%d@university.edu", i),
			"Department":   "Unassigned",
		}
		result, err := leaves.Mutation.Execute(ctx, ports.MutationInsert, table, record, "")
		if err != nil {
			return "", fmt.Errorf("generate insert: %w", err)
		}
		if result.Err != "" {
			state.AppendStep(domain.NewStep(domain.AgentManagement, "generate_records",
				fmt.Sprintf("generate %d records for %s", count, table),
				"stopped: "+result.Err))
			return fmt.Sprintf("Generated %d of %d records before the insert was rejected: %s", inserted, count, result.Err), nil
		}
		inserted++
	}

	state.AppendStep(domain.NewStep(domain.AgentManagement, "generate_records",
		fmt.Sprintf("generate %d records for %s", count, table),
		fmt.Sprintf("inserted %d records", inserted)))
	return fmt.Sprintf("Generated and inserted %d synthetic records into %s.", inserted, table), nil
}

// integrationPlan is the typed shape of the integration planner's output.
type integrationPlan struct {
	System   string         `plan:"system"`
	Endpoint string         `plan:"endpoint"`
	Params   map[string]any `plan:"params"`
}

// IntegrationProfile builds the integration coordinator: one call into an
// external campus system. Unrecognized systems fall back to sis, the
// schema default.
func IntegrationProfile(leaves Leaves) Profile {
	schema := plan.Schema{
		Name: "integration_plan",
		Fields: []plan.Field{
			{Name: "system", Kind: plan.String, Default: "sis"},
			{Name: "endpoint", Kind: plan.String, Default: "enrollment"},
			{Name: "params", Kind: plan.Object, Default: map[string]any{}},
		},
	}

	return Profile{
		Agent:      domain.AgentIntegration,
		PlanPrompt: integrationPlanPrompt,
		Schema:     schema,
		Dispatch: func(ctx context.Context, state *domain.TurnState, p plan.Plan) (string, error) {
			var ip integrationPlan
			if err := p.Decode(&ip); err != nil {
				return "", fmt.Errorf("decode integration plan: %w", err)
			}

			var system ports.ExternalSystem
			switch ip.System {
			case "lms":
				system = ports.SystemLMS
			case "crm":
				system = ports.SystemCRM
			default:
				system = ports.SystemSIS
			}
			endpoint := ip.Endpoint

			payload, err := leaves.External.Call(ctx, system, endpoint, ip.Params)
			if err != nil {
				return "", fmt.Errorf("external system call: %w", err)
			}

			state.AppendStep(domain.NewStep(domain.AgentIntegration, "call_external_system",
				fmt.Sprintf("%s/%s", system, endpoint), summarizePayload(payload)))

			return fmt.Sprintf("The %s system's %s endpoint returned: %s",
				system, endpoint, summarizePayload(payload)), nil
		},
		SynthesisPrompt: integrationSynthesisPrompt,
		Apology:         "I apologize, but the external system could not be reached right now. Please try again.",
	}
}

// summarizePayload renders a payload with stable key order for prompts and
// the ledger.
func summarizePayload(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, ", ")
}
