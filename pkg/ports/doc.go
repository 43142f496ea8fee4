// Package ports defines the boundary contracts of the turn router. The core
// depends only on these interfaces; adapters (redis, sqlite, llm, mocks,
// http) implement them. Specialist leaves are deliberately narrow: one
// request/response operation each, no implementation prescribed.
package ports
