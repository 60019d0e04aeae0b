// Package scripting runs user-supplied validation scripts against the form
// model before a burn. Scripts see a small DOM: getField(id) with a value
// accessor, getPage(n), and app.alert.
package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute executes a script and returns its exported result.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDOM registers the form DOM with the engine.
	RegisterDOM(dom FormDOM) error
}

// FormDOM exposes the anchoring model to scripts through a safe, controlled
// API.
type FormDOM interface {
	// GetField returns a field proxy by id.
	GetField(id string) (FieldProxy, error)

	// GetPage returns a page proxy by 1-based page number.
	GetPage(number int) (PageProxy, error)

	// Alert surfaces a message to the embedding application.
	Alert(message string)
}

// FieldProxy represents a field exposed to scripts.
type FieldProxy interface {
	GetValue() interface{}
	SetValue(value interface{})
}

// PageProxy represents a page exposed to scripts.
type PageProxy interface {
	GetNumber() int
	GetSize() (width, height float64)
}
