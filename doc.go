// Package concierge routes conversational requests for a university
// administrative assistant. A turn is classified by a director node,
// delegated to one of four coordinators (analysis, communication,
// management, integration), and synthesized back into a single reply.
//
// The model-facing pieces are deliberately thin: plans are elicited from
// an unreliable text completion with layered fallback parsing, recipient
// lookup degrades through staged query tiers down to hard-coded
// mailboxes, and every delegation lands in an append-only step ledger
// observable through the trace surface.
//
// Minimal usage:
//
//	eng, err := concierge.New(completion, concierge.Specialists{
//		Data:     directory,
//		Chart:    mock.NewChartRenderer(),
//		Mail:     mock.NewMailer(logger),
//		Mutation: mock.NewMutator(),
//		External: mock.NewExternalSystems(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	reply, err := eng.SubmitTurn(ctx, "session-1", "Email students on probation")
package concierge
