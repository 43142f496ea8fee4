package plan

// Kind describes how a schema field is extracted and defaulted.
type Kind int

const (
	String Kind = iota
	Bool
	Int
	Object
)

// Field is one named plan entry with a documented default. Defaults apply
// at point of use, never at parse time, so a strict parse that omitted a
// field and a salvage pass that could not find it behave identically.
type Field struct {
	Name    string
	Kind    Kind
	Default any
}

// Schema names the fields a coordinator expects its planner to produce.
type Schema struct {
	// Name labels the schema in logs and traces ("communication_plan" etc).
	Name string

	Fields []Field
}

// Field looks up a field definition by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
