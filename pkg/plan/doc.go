// Package plan extracts structured coordinator plans from unreliable
// free-text completions. Extraction is layered: strict JSON parse first,
// per-field regex salvage second, schema defaults last. It never fails:
// arbitrary input always yields a schema-shaped plan.
package plan
