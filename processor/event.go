package processor

import (
	"github.com/skydb/sky/block"
	"github.com/skydb/sky/database"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
	"github.com/skydb/sky/message"
	"github.com/skydb/sky/table"
	"github.com/skydb/sky/value"
)

// AddEvent builds an event from a property name→value map, resolving each
// name to its registered id and checking its declared type, then inserts
// it into the table's block store.
func AddEvent(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	objectIDVal, ok := value.Field(data, "object_id")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "add_event missing required field: object_id"))
	}

	timestampVal, ok := value.Field(data, "timestamp")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "add_event missing required field: timestamp"))
	}

	e := block.Event{ObjectID: objectIDVal.Uint64(), Timestamp: timestampVal.Int}

	if actionVal, ok := value.Field(data, "action_id"); ok {
		e.ActionID = uint32(actionVal.Uint64())
	}

	if dataVal, ok := value.Field(data, "data"); ok && dataVal.Kind == format.KindMap {
		eventData := make(map[uint16]value.Value, len(dataVal.Map))

		for _, entry := range dataVal.Map {
			prop, err := tbl.Properties().FindByName(entry.Key)
			if err != nil {
				return message.Err(err)
			}

			if !entry.Value.Kind.SameDataType(prop.DataType) {
				return message.Err(errs.New(errs.KindSchema, "property %s: value type disagrees with declared type %s", entry.Key, prop.DataType.DataTypeName()))
			}

			eventData[prop.ID] = entry.Value
		}

		e.Data = eventData
	}

	if err := tbl.AddEvent(e); err != nil {
		return message.Err(err)
	}

	return message.OK()
}

// GetEventCount is a convenience query: {object_id} -> {count}.
func GetEventCount(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	objectIDVal, ok := value.Field(data, "object_id")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "get_event_count missing required field: object_id"))
	}

	count := tbl.EventCount(objectIDVal.Uint64())

	return message.OK(value.MapEntry{Key: "count", Value: value.Uint(uint64(count))})
}
