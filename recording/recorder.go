package recording

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CycleRecord is what one agent cycle received and sent.
type CycleRecord struct {
	ID             int    `storm:"id,increment"`
	Session        string `storm:"index"`
	Cycle          int
	SimulationTime float64
	Perceived      string
	Errors         []string
	Sent           string
	At             time.Time
}

type Recorder interface {
	Record(rec CycleRecord) error
	Close()
}

type EmptyRecorder struct{}

func MakeEmptyRecorder() EmptyRecorder {
	return EmptyRecorder{}
}

func (r EmptyRecorder) Record(rec CycleRecord) error {
	return nil
}

func (r EmptyRecorder) Close() {}

// StormRecorder stores every cycle of one session in a storm database. The
// database is owned by the caller and is not closed with the recorder.
type StormRecorder struct {
	db      *storm.DB
	session string
}

func Init(db *storm.DB) error {
	return db.Init(&CycleRecord{})
}

func MakeStormRecorder(db *storm.DB) (*StormRecorder, error) {
	if err := Init(db); err != nil {
		return nil, errors.Wrap(err, "could not initialise cycle records")
	}

	return &StormRecorder{
		db:      db,
		session: uuid.New().String(),
	}, nil
}

func (r *StormRecorder) Session() string {
	return r.session
}

func (r *StormRecorder) Record(rec CycleRecord) error {
	rec.ID = 0
	rec.Session = r.session
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}

	return errors.Wrapf(r.db.Save(&rec), "could not save cycle %d", rec.Cycle)
}

func (r *StormRecorder) Close() {}

// Cycles returns the records of a session in cycle order.
func Cycles(db *storm.DB, session string) ([]CycleRecord, error) {
	var recs []CycleRecord
	err := db.Select(q.Eq("Session", session)).OrderBy("Cycle").Find(&recs)
	if err == storm.ErrNotFound {
		return nil, nil
	}
	return recs, errors.Wrapf(err, "could not read session %s", session)
}
