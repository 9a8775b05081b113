package processor

import (
	"github.com/skydb/sky/database"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/message"
	"github.com/skydb/sky/table"
	"github.com/skydb/sky/value"
)

// NextAction returns the action_id of the first event for object_id
// strictly after timestamp, or 0 if there is none. prior_action_id is
// accepted per the wire contract but not otherwise consulted — the cursor
// already starts from the table's one logical path per object and needs no
// resume hint beyond timestamp.
func NextAction(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	objectIDVal, ok := value.Field(data, "object_id")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "next_action missing required field: object_id"))
	}

	timestampVal, ok := value.Field(data, "timestamp")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "next_action missing required field: timestamp"))
	}

	c := tbl.Cursor(objectIDVal.Uint64())
	defer c.Close()

	var actionID uint32

	for c.Next() {
		e := c.Current()
		if e.Timestamp > timestampVal.Int {
			actionID = e.ActionID

			break
		}
	}

	if err := c.Err(); err != nil {
		return message.Err(err)
	}

	return message.OK(value.MapEntry{Key: "action_id", Value: value.Uint(uint64(actionID))})
}
