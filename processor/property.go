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

func propertyValue(p catalog.Property) value.Value {
	return value.Map([]value.MapEntry{
		{Key: "id", Value: value.Uint(uint64(p.ID))},
		{Key: "name", Value: value.String(p.Name)},
		{Key: "data_type", Value: value.String(p.DataType.DataTypeName())},
	})
}

// AddProperty registers a new property: {name, data_type} -> {property}.
func AddProperty(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	nameVal, ok := value.Field(data, "name")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "add_property missing required field: name"))
	}

	typeVal, ok := value.Field(data, "data_type")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "add_property missing required field: data_type"))
	}

	p, err := tbl.Properties().Add(nameVal.Str, typeVal.Str)
	if err != nil {
		return message.Err(err)
	}

	return message.OK(value.MapEntry{Key: "property", Value: propertyValue(p)})
}

// GetProperty looks up a property by id: {id} -> {property}.
func GetProperty(_ *database.Database, tbl *table.Table, data []value.MapEntry) message.Reply {
	idVal, ok := value.Field(data, "id")
	if !ok {
		return message.Err(errs.New(errs.KindProtocol, "get_property missing required field: id"))
	}

	p, err := tbl.Properties().Get(uint16(idVal.Uint64()))
	if err != nil {
		return message.Err(err)
	}

	return message.OK(value.MapEntry{Key: "property", Value: propertyValue(p)})
}

// GetProperties lists every registered property in id order.
func GetProperties(_ *database.Database, tbl *table.Table, _ []value.MapEntry) message.Reply {
	all := tbl.Properties().All()
	entries := make([]value.MapEntry, len(all))

	for i, p := range all {
		entries[i] = value.MapEntry{Key: strconv.Itoa(i), Value: propertyValue(p)}
	}

	return message.OK(value.MapEntry{Key: "properties", Value: value.Map(entries)})
}
