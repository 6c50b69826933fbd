package keymap

import (
	"fmt"
	"strings"
)

// HelpSection represents a group of bindings in help text
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// HelpBinding represents a single binding for display
type HelpBinding struct {
	Keys        string // Combined keys like "j / down"
	Description string
}

// helpContexts lists the contexts shown in the help screen, in order
var helpContexts = []struct {
	ctx   Context
	title string
}{
	{ContextMain, "BOOK LIST"},
	{ContextFilter, "FILTERS"},
	{ContextModal, "SUMMARY / REVIEWS"},
	{ContextConfirm, "DELETE CONFIRMATION"},
	{ContextForm, "FORMS"},
	{ContextGlobal, "GLOBAL"},
}

// Sections groups the registered bindings by context. Keys bound to the
// same command are merged into one line, in registration order.
func (r *Registry) Sections() []HelpSection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sections []HelpSection
	for _, hc := range helpContexts {
		var order []Command
		keys := make(map[Command][]string)
		desc := make(map[Command]string)
		for _, b := range r.bindings[hc.ctx] {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
				desc[b.Command] = b.Description
			}
			keys[b.Command] = append(keys[b.Command], displayKey(b.Key))
		}
		if len(order) == 0 {
			continue
		}
		section := HelpSection{Title: hc.title}
		for _, cmd := range order {
			section.Bindings = append(section.Bindings, HelpBinding{
				Keys:        strings.Join(keys[cmd], " / "),
				Description: desc[cmd],
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// GenerateHelp renders the help screen text
func (r *Registry) GenerateHelp() string {
	var sb strings.Builder
	sb.WriteString("\nCATALOG BROWSER - Key Bindings\n")
	for _, s := range r.Sections() {
		sb.WriteString("\n" + s.Title + ":\n")
		for _, b := range s.Bindings {
			sb.WriteString(fmt.Sprintf("  %-24s %s\n", b.Keys, b.Description))
		}
	}
	sb.WriteString("\nPress ? to close help\n")
	return sb.String()
}

func displayKey(k string) string {
	switch k {
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	case "enter":
		return "Enter"
	case "esc":
		return "Esc"
	case "tab":
		return "Tab"
	case "shift+tab":
		return "Shift+Tab"
	}
	if strings.HasPrefix(k, "ctrl+") {
		return "Ctrl+" + strings.TrimPrefix(k, "ctrl+")
	}
	return k
}
