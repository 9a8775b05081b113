package processor

import "github.com/skydb/sky/message"

// Registry returns every named processor except "multi", which the
// dispatcher handles directly since its reply shape (a concatenated stream)
// doesn't fit the single-Reply Processor signature.
func Registry() map[string]message.Processor {
	return map[string]message.Processor{
		"add_event":       AddEvent,
		"add_action":      AddAction,
		"get_action":      GetAction,
		"get_actions":     GetActions,
		"add_property":    AddProperty,
		"get_property":    GetProperty,
		"get_properties":  GetProperties,
		"next_action":     NextAction,
		"get_event_count": GetEventCount,
	}
}
