package config

type FieldType string

const (
	FieldTypeNumber   FieldType = "number"
	FieldTypeText     FieldType = "text"
	FieldTypeDuration FieldType = "duration"
	FieldTypeSecret   FieldType = "secret"
	FieldTypeSelect   FieldType = "select"
)

type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one setting and the value currently in effect.
type Field struct {
	Name         string        `json:"name"`
	Env          string        `json:"env"`
	Type         FieldType     `json:"type"`
	Label        string        `json:"label"`
	Value        any           `json:"value"`
	DefaultValue any           `json:"defaultValue"`
	HelpText     string        `json:"helpText,omitempty"`
	Required     bool          `json:"required,omitempty"`
	Options      []FieldOption `json:"options,omitempty"`
}

type FieldGroup struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}
