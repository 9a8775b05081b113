package message

import (
	"bufio"
	"io"

	"github.com/skydb/sky/database"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/table"
	"github.com/skydb/sky/value"
)

// Processor handles one request kind's data payload against an already
// resolved database and table, returning the reply to send back.
type Processor func(db *database.Database, tbl *table.Table, data []value.MapEntry) Reply

// Dispatcher routes envelopes read off one connection to the processor
// matching their name, maintaining a per-connection last-used
// (database, table) cache — never process-wide state, since two connections
// may legitimately be working against different tables at once.
type Dispatcher struct {
	manager    *database.Manager
	processors map[string]Processor

	lastDBName    string
	lastDB        *database.Database
	lastTableName string
	lastTable     *table.Table
}

// NewDispatcher returns a Dispatcher over manager, routing by name through
// processors.
func NewDispatcher(manager *database.Manager, processors map[string]Processor) *Dispatcher {
	return &Dispatcher{manager: manager, processors: processors}
}

// HandleOne reads one envelope from r and writes its reply (or, for
// "multi", the concatenated replies of its sub-envelopes, also read from r)
// to w. An envelope that was read in full but is malformed (a Protocol
// error) gets an error reply and the connection stays usable. Returns io.EOF
// when the connection closed cleanly between requests; any other returned
// error is a Decode error or a failed write, and the connection must be
// closed by the caller.
func (d *Dispatcher) HandleOne(r *bufio.Reader, w io.Writer) error {
	env, err := ReadEnvelope(r)
	if errs.KindOf(err) == errs.KindProtocol {
		return WriteReply(w, Err(err))
	}

	if err != nil {
		return err
	}

	return d.handle(env, r, w)
}

func (d *Dispatcher) handle(env Envelope, r *bufio.Reader, w io.Writer) error {
	if env.Name == "multi" {
		return d.handleMulti(env, r, w)
	}

	return WriteReply(w, d.dispatchOne(env))
}

// handleMulti reads exactly env.Data["count"] further envelopes from r and
// dispatches each in turn, writing their replies back to back with no
// enclosing map — the reply stream itself is not wrapped.
func (d *Dispatcher) handleMulti(env Envelope, r *bufio.Reader, w io.Writer) error {
	countVal, ok := value.Field(env.Data, "count")
	if !ok {
		return WriteReply(w, Err(errs.New(errs.KindProtocol, "multi missing required field: count")))
	}

	count := countVal.Uint64()

	for i := uint64(0); i < count; i++ {
		sub, err := ReadEnvelope(r)
		if errs.KindOf(err) == errs.KindProtocol {
			if err := WriteReply(w, Err(err)); err != nil {
				return err
			}

			continue
		}

		if err != nil {
			return err
		}

		if err := d.handle(sub, r, w); err != nil {
			return err
		}
	}

	return nil
}

func (d *Dispatcher) dispatchOne(env Envelope) Reply {
	proc, ok := d.processors[env.Name]
	if !ok {
		return Err(errs.New(errs.KindProtocol, "unknown request: %s", env.Name))
	}

	db, tbl, err := d.resolve(env.Database, env.Table)
	if err != nil {
		return Err(err)
	}

	return proc(db, tbl, env.Data)
}

// resolve returns the (database, table) pair named by the envelope,
// reusing the dispatcher's cached pair when the names match and opening
// (or looking up) them otherwise.
func (d *Dispatcher) resolve(dbName, tableName string) (*database.Database, *table.Table, error) {
	if dbName == "" {
		return nil, nil, errs.New(errs.KindProtocol, "envelope missing required field: database")
	}

	if tableName == "" {
		return nil, nil, errs.New(errs.KindProtocol, "envelope missing required field: table")
	}

	db := d.lastDB
	if db == nil || d.lastDBName != dbName {
		var err error

		db, err = d.manager.Database(dbName)
		if err != nil {
			return nil, nil, err
		}

		d.lastDB = db
		d.lastDBName = dbName
		d.lastTable = nil
		d.lastTableName = ""
	}

	tbl := d.lastTable
	if tbl == nil || d.lastTableName != tableName {
		var err error

		tbl, err = db.Table(tableName)
		if err != nil {
			return nil, nil, err
		}

		d.lastTable = tbl
		d.lastTableName = tableName
	}

	return db, tbl, nil
}
