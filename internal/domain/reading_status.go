package domain

// DateLayout is the format of reading dates.
const DateLayout = "2006-01-02"

// ReadingState is one of the four per-user, per-book progress states.
// Any state may be set from any other.
type ReadingState string

const (
	WantToRead       ReadingState = "want_to_read"
	CurrentlyReading ReadingState = "currently_reading"
	Finished         ReadingState = "finished"
	DidNotFinish     ReadingState = "did_not_finish"
)

// ReadingStates lists every state in display order.
var ReadingStates = []ReadingState{WantToRead, CurrentlyReading, Finished, DidNotFinish}

// Valid reports whether s is a known state.
func (s ReadingState) Valid() bool {
	switch s {
	case WantToRead, CurrentlyReading, Finished, DidNotFinish:
		return true
	}
	return false
}

// ReadingStatus is a user's progress on one book. Unique per (user, book).
type ReadingStatus struct {
	Record
	UserID       string       `json:"user_id"`
	BookID       string       `json:"book_id"`
	Status       ReadingState `json:"status"`
	StartedDate  *string      `json:"started_date"`
	FinishedDate *string      `json:"finished_date"`
}

// DateChange is an optional edit to a reading date. The zero value leaves the
// stored date alone; Set with a nil Value clears it.
type DateChange struct {
	Set   bool
	Value *string
}

// SetDate replaces a date with v.
func SetDate(v string) DateChange { return DateChange{Set: true, Value: &v} }

// ClearDate removes a stored date.
func ClearDate() DateChange { return DateChange{Set: true} }

// Transition moves the status to the given state. Explicit date changes are
// applied first and are never overridden. Entering currently_reading stamps a
// start date when none is set. Entering finished from another state stamps
// the finish date with today, and a start date that was never set is
// backfilled with the finish date.
func (rs *ReadingStatus) Transition(to ReadingState, started, finished DateChange, today string) {
	from := rs.Status
	rs.Status = to
	if started.Set {
		rs.StartedDate = started.Value
	}
	if finished.Set {
		rs.FinishedDate = finished.Value
	}

	switch to {
	case CurrentlyReading:
		if rs.StartedDate == nil && !started.Set {
			rs.StartedDate = &today
		}
	case Finished:
		if from != Finished && !finished.Set {
			rs.FinishedDate = &today
		}
		if rs.StartedDate == nil && !started.Set && rs.FinishedDate != nil {
			backfill := *rs.FinishedDate
			rs.StartedDate = &backfill
		}
	}
}

// LibraryEntry is a reading status joined with its book.
type LibraryEntry struct {
	ReadingStatus
	Book BookSummary `json:"book"`
}

// Library is a user's statuses partitioned by state.
type Library struct {
	WantToRead       []LibraryEntry       `json:"want_to_read"`
	CurrentlyReading []LibraryEntry       `json:"currently_reading"`
	Finished         []LibraryEntry       `json:"finished"`
	DidNotFinish     []LibraryEntry       `json:"did_not_finish"`
	Counts           map[ReadingState]int `json:"counts"`
}

// NewLibrary partitions entries by state, preserving their order.
func NewLibrary(entries []LibraryEntry) *Library {
	lib := &Library{
		WantToRead:       []LibraryEntry{},
		CurrentlyReading: []LibraryEntry{},
		Finished:         []LibraryEntry{},
		DidNotFinish:     []LibraryEntry{},
		Counts:           make(map[ReadingState]int, len(ReadingStates)),
	}
	for _, s := range ReadingStates {
		lib.Counts[s] = 0
	}

	for _, e := range entries {
		switch e.Status {
		case WantToRead:
			lib.WantToRead = append(lib.WantToRead, e)
		case CurrentlyReading:
			lib.CurrentlyReading = append(lib.CurrentlyReading, e)
		case Finished:
			lib.Finished = append(lib.Finished, e)
		case DidNotFinish:
			lib.DidNotFinish = append(lib.DidNotFinish, e)
		default:
			continue
		}
		lib.Counts[e.Status]++
	}
	return lib
}
