package model

import (
	"fmt"
	"strings"
)

// ActionKind is one of the four generation operations.
type ActionKind string

const (
	// ActionInterior renders the book's inner pages from the uploaded images.
	ActionInterior ActionKind = "interior"

	// ActionCover renders the front cover.
	ActionCover ActionKind = "cover"

	// ActionBackcover renders the back cover. It needs no images.
	ActionBackcover ActionKind = "backcover"

	// ActionUnify merges previously generated PDFs into one document.
	ActionUnify ActionKind = "unify"
)

// Actions lists every action in the order the UI offers them.
var Actions = []ActionKind{ActionInterior, ActionCover, ActionBackcover, ActionUnify}

// ParseActionKind converts a user supplied name to an ActionKind.
// "unified" is accepted as an alias of unify.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interior", "miolo":
		return ActionInterior, nil
	case "cover", "capa":
		return ActionCover, nil
	case "backcover", "contracapa":
		return ActionBackcover, nil
	case "unify", "unified":
		return ActionUnify, nil
	}
	return "", fmt.Errorf("unknown action %q (want interior, cover, backcover or unify)", s)
}

// RemoteAction returns the operation name expected by the rendering service.
func (a ActionKind) RemoteAction() string {
	switch a {
	case ActionInterior:
		return "generate_pdf"
	case ActionCover:
		return "generate_cover"
	case ActionBackcover:
		return "generate_backcover"
	case ActionUnify:
		return "merge_pdfs"
	default:
		return ""
	}
}

// RequiresImages reports whether the action needs at least one uploaded image.
func (a ActionKind) RequiresImages() bool {
	return a == ActionInterior || a == ActionCover
}

// Valid reports whether a is a known action.
func (a ActionKind) Valid() bool {
	return a.RemoteAction() != ""
}

// Label returns the name shown on the UI buttons.
func (a ActionKind) Label() string {
	switch a {
	case ActionInterior:
		return "PDF (Miolo)"
	case ActionCover:
		return "Capa"
	case ActionBackcover:
		return "Contracapa"
	case ActionUnify:
		return "Unificar PDFs"
	default:
		return string(a)
	}
}
