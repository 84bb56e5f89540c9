package commands

import (
	"context"
	"fmt"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/schema"
)

// Global names the global vocabulary in a TranslateCommand
const Global = "global"

// TranslateResult holds a translated item and the merge warnings
// collected on the way
type TranslateResult struct {
	Global   domain.Item      `json:"global"`
	Output   domain.Item      `json:"output"`
	Warnings []schema.Warning `json:"warnings,omitempty"`
}

// TranslateCommand translates one item between two vocabularies, going
// through the global one
type TranslateCommand struct {
	From string
	To   string
	Item domain.Item
}

// NewTranslateCommand creates a new TranslateCommand
func NewTranslateCommand(from, to string, item domain.Item) *TranslateCommand {
	return &TranslateCommand{From: from, To: to, Item: item}
}

// Validate checks both vocabularies exist
func (c *TranslateCommand) Validate() error {
	sides := []struct{ field, name string }{{"from", c.From}, {"to", c.To}}
	for _, side := range sides {
		field, name := side.field, side.name
		if err := application.ValidateRequired(field, name); err != nil {
			return err
		}
		if name == Global {
			continue
		}
		if _, ok := schema.Lookup(name); !ok {
			return &application.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("no dictionary for %q", name),
			}
		}
	}
	return nil
}

// Execute runs the translation
func (c *TranslateCommand) Execute(ctx context.Context) (*TranslateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &TranslateResult{Global: c.Item.Clone()}
	if c.From != Global {
		dict, _ := schema.Lookup(c.From)
		global, warnings := schema.NewTranslator(dict).ToGlobal(c.Item)
		res.Global = global
		res.Warnings = append(res.Warnings, warnings...)
	}

	res.Output = res.Global
	if c.To != Global {
		dict, _ := schema.Lookup(c.To)
		out, warnings := schema.NewTranslator(dict).ToLocal(res.Global)
		res.Output = out
		res.Warnings = append(res.Warnings, warnings...)
	}
	return res, nil
}
