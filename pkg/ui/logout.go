package ui

import "github.com/evaluation-alex/dogstack-agents/pkg/dux"

// LogOutMessageID is the message shown inside the log out button.
const LogOutMessageID = "agents.logOut"

// Actions is the capability the log out button needs.
type Actions interface {
	Authentication() dux.LogOuter
}

// LogOutProps configures LogOut. Props holds pass-through properties for
// the root element.
type LogOutProps struct {
	Styles  map[string]string // "container" and "buttonText" class names
	Actions Actions
	As      ElementType // defaults to FlatButton
	OnClick ClickHandler
	Props   map[string]any
}

// reserved are consumed by LogOut and never forwarded.
var reserved = map[string]bool{
	"styles":  true,
	"actions": true,
	"as":      true,
	"onClick": true,
}

// LogOut returns a button that runs OnClick, if set, and then logs the
// agent out. Pass-through props are forwarded to the root and may override
// its className.
func LogOut(p LogOutProps) Element {
	root := p.As
	if root == "" {
		root = FlatButton
	}

	props := map[string]any{
		"className": p.Styles["container"],
		"onClick": ClickHandler(func(ev Event) {
			if p.OnClick != nil {
				p.OnClick(ev)
			}
			p.Actions.Authentication().LogOut()
		}),
	}
	for k, v := range p.Props {
		if reserved[k] {
			continue
		}
		props[k] = v
	}

	return Element{
		Type:  root,
		Props: props,
		Children: []Element{{
			Type: Message,
			Props: map[string]any{
				"id":        LogOutMessageID,
				"className": p.Styles["buttonText"],
			},
		}},
	}
}
