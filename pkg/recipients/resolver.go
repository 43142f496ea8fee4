package recipients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campushq/concierge/internal/logging"
	"github.com/campushq/concierge/pkg/domain"
	"github.com/campushq/concierge/pkg/ports"
)

// Tier classifies a recipient description into one of the fixed fallback
// strategies. Tiers are checked in priority order; the first match wins.
type Tier string

const (
	TierProbation    Tier = "probation"
	TierFinancialAid Tier = "financial_aid"
	TierDepartment   Tier = "department"
	TierGPA          Tier = "gpa"
	TierGeneric      Tier = "generic"
)

// Hard-coded mailboxes used when every query tier comes up empty.
var fallbackMailboxes = map[Tier][]string{
	TierProbation:    {"academic_support@university.edu"},
	TierFinancialAid: {"financial_aid_students@university.edu"},
	TierDepartment:   {"departmental_students@university.edu"},
	TierGPA:          {"all_students@university.edu"},
	TierGeneric:      {"all_students@university.edu"},
}

// lastResortQuery is the final direct statement tried before giving up on
// the database entirely.
const lastResortQuery = `SELECT "Person"."EmailAddress"
FROM "Person"
JOIN "PsStudentAcademicRecord" ON "Person"."PersonId" = "PsStudentAcademicRecord"."PersonId"
WHERE "PsStudentAcademicRecord"."GPA" < 2.5;`

// Result is the outcome of one resolution, including how degraded it was.
type Result struct {
	Addresses    []string
	Tier         Tier
	UsedFallback bool
}

// Resolver turns a natural-language recipient description into contact
// addresses via a staged query chain against the data-query leaf. It never
// returns an empty list: exhausting every tier yields the hard-coded
// mailbox for the classification, recorded as a fallback.
type Resolver struct {
	data       ports.DataQueryPort
	logger     *slog.Logger
	onFallback func(tier string)
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithFallbackHook registers a callback fired whenever resolution exhausts
// every query tier and falls back to a hard-coded mailbox.
func WithFallbackHook(hook func(tier string)) Option {
	return func(r *Resolver) {
		r.onFallback = hook
	}
}

// New creates a Resolver over the given data-query leaf.
func New(data ports.DataQueryPort, opts ...Option) *Resolver {
	r := &Resolver{
		data:   data,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify maps a description to its fallback tier using case-insensitive
// substring tests in fixed priority order.
func Classify(description string) Tier {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "probation") || strings.Contains(d, "academic standing"):
		return TierProbation
	case strings.Contains(d, "financial aid") || strings.Contains(d, "scholarship"):
		return TierFinancialAid
	case strings.Contains(d, "department") || strings.Contains(d, "program"):
		return TierDepartment
	case strings.Contains(d, "gpa") || strings.Contains(d, "grade"):
		return TierGPA
	default:
		return TierGeneric
	}
}

// queriesFor builds the ordered query list for a tier. Exploration queries
// come first where the tier has them; by construction they return no
// address-bearing rows and the scan skips past them.
func queriesFor(tier Tier, description string) []string {
	switch tier {
	case TierProbation:
		return []string{
			"Find all distinct values in the AcademicStanding column of the PsStudentAcademicRecord table",
			"Find email addresses of all students whose AcademicStanding contains 'Probation' or is exactly 'Probation'",
			"Find email addresses of all students with a GPA below 2.5",
		}
	case TierFinancialAid:
		return []string{
			"Find all distinct financial aid status values available in the database",
			"Find email addresses of all students who have received financial aid",
		}
	case TierDepartment:
		return []string{
			"Find all available departments or programs in the database",
			"Find email addresses of all students in the " + description,
		}
	case TierGPA:
		return []string{
			"Find email addresses of all students with GPA below 2.5",
			"Find email addresses of all students with GPA above 3.5",
		}
	default:
		return []string{
			"Find email addresses of all current students",
		}
	}
}

// Resolve executes the tier's queries in order and stops at the first one
// whose result yields at least one address. Every attempt and its outcome
// is appended to the turn's step ledger regardless of success.
func (r *Resolver) Resolve(ctx context.Context, description string, state *domain.TurnState) (Result, error) {
	tier := Classify(description)
	r.logger.Info("resolving recipients", "description", description, "tier", tier)

	for _, query := range queriesFor(tier, description) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		state.AppendStep(domain.NewStep("sql_agent", "query_recipients", query, "Processing query to find recipients"))

		result, err := r.data.Query(ctx, query)
		if err != nil {
			r.logger.Warn("recipient query transport failure", "query", query, "err", err)
			continue
		}
		if result.Failed() {
			r.logger.Warn("recipient query error", "query", query, "err", result.Err)
			continue
		}

		addresses := collectAddresses(result.Rows)
		if len(addresses) > 0 {
			r.logger.Info("recipients found", "count", len(addresses), "query", query)
			state.AppendStep(domain.NewStep("sql_agent", "find_recipients", query,
				fmt.Sprintf("Found %d recipients", len(addresses))))
			return Result{Addresses: addresses, Tier: tier}, nil
		}
	}

	// Last resort: one direct statement joining person and academic records.
	state.AppendStep(domain.NewStep("sql_agent", "query_recipients", lastResortQuery, "Processing query to find recipients"))
	if result, err := r.data.Query(ctx, "Execute this exact SQL query: "+lastResortQuery); err == nil && !result.Failed() {
		if addresses := collectAddresses(result.Rows); len(addresses) > 0 {
			r.logger.Info("last resort query found recipients", "count", len(addresses))
			state.AppendStep(domain.NewStep("sql_agent", "find_recipients", lastResortQuery,
				fmt.Sprintf("Found %d recipients", len(addresses))))
			return Result{Addresses: addresses, Tier: tier}, nil
		}
	}

	// Resolution exhausted: fall back to the tier's mailbox.
	fallback := fallbackMailboxes[tier]
	r.logger.Warn("no recipients found with database queries, using fallback",
		"tier", tier, "recipients", fallback)
	if r.onFallback != nil {
		r.onFallback(string(tier))
	}
	state.AppendStep(domain.NewStep(domain.AgentCommunication, "use_fallback_recipients", description,
		"Using fallback recipients: "+strings.Join(fallback, ", ")))

	return Result{Addresses: fallback, Tier: tier, UsedFallback: true}, nil
}

// collectAddresses scans every field of every row for a string containing
// "@". Exploration result sets carry none by construction.
func collectAddresses(rows []map[string]any) []string {
	var addresses []string
	for _, row := range rows {
		for _, value := range row {
			if s, ok := value.(string); ok && strings.Contains(s, "@") {
				addresses = append(addresses, s)
			}
		}
	}
	return addresses
}
