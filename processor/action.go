// Package processor implements the per-request-kind handlers: pure
// functions over (database, table, request data) that return a reply.
package processor

import (
	"strconv"

	"github.com/skydb/sky/catalog"
	"github.com/skydb/sky/database"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/message"
	"github.com/skydb/sky/table"
	"github.com/skydb/sky/value"
)

func actionValue(a catalog.Action) value.Value {
	return value.Map([]value.MapEntry{
		{Key: "id", Value: value.Uint(uint64(a.ID))},
		{Key: "name", Value: value.String(a.Name)},
	})
}

// AddAction registers a new action: {name} -> {action:{id,name}}.
func AddAction(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	nameVal, ok := value.Field(data, "name")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "add_action missing required field: name"))
	}

	a, err := tbl.Actions().Add(nameVal.Str)
	if err != nil {
		return message.Err(err)
	}

	return message.OK(value.MapEntry{Key: "action", Value: actionValue(a)})
}

// GetAction looks up an action by id: {id} -> {action}.
func GetAction(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	idVal, ok := value.Field(data, "id")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "get_action missing required field: id"))
	}

	a, err := tbl.Actions().Get(uint32(idVal.Uint64()))
	if err != nil {
		return message.Err(err)
	}

	return message.OK(value.MapEntry{Key: "action", Value: actionValue(a)})
}

// GetActions lists every registered action in id order: {} -> {actions:[…]}.
// The wire codec defines no array shape, only scalars and maps, so an
// "ordered list" reply is a map keyed by stringified index — order carried
// by key order, not by any special list marker.
func GetActions(_ *database.Database, tbl *table.Table, _ []value.MapEntry) message.Reply {
	all := tbl.Actions().All()
	entries := make([]value.MapEntry, len(all))

	for i, a := range all {
		entries[i] = value.MapEntry{Key: strconv.Itoa(i), Value: actionValue(a)}
	}

	return message.OK(value.MapEntry{Key: "actions", Value: value.Map(entries)})
}
