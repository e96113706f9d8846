// Package ui describes client components as plain element trees that a
// renderer turns into widgets.
package ui

// ElementType names a component or widget.
type ElementType string

const (
	// FlatButton is a generic pressable button.
	FlatButton ElementType = "FlatButton"
	// Message renders a translated message looked up by its "id" prop.
	Message ElementType = "FormattedMessage"
)

// Event is passed to click handlers.
type Event struct {
	Type string
}

// ClickHandler handles an activation of an element.
type ClickHandler func(Event)

// Element is one node of a component tree.
type Element struct {
	Type     ElementType
	Props    map[string]any
	Children []Element
}

// Prop returns the named prop.
func (e Element) Prop(name string) (any, bool) {
	v, ok := e.Props[name]
	return v, ok
}

// Click activates e by calling its onClick prop. It reports whether the
// element had a handler.
func Click(e Element, ev Event) bool {
	h, ok := e.Props["onClick"].(ClickHandler)
	if !ok || h == nil {
		return false
	}
	h(ev)
	return true
}
