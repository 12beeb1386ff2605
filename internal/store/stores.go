package store

// Stores bundles every table-level store over one connection.
type Stores struct {
	Users        *UserStore
	Cohorts      *CohortStore
	Participants *ParticipantStore
	Schedule     *ScheduleStore
	Logs         *LogStore
	Intakes      *IntakeStore
	CheckIns     *CheckInStore
	Worksheets   *WorksheetStore
	Summaries    *SummaryStore
}

func NewStores(db *DB) *Stores {
	return &Stores{
		Users:        NewUserStore(db),
		Cohorts:      NewCohortStore(db),
		Participants: NewParticipantStore(db),
		Schedule:     NewScheduleStore(db),
		Logs:         NewLogStore(db),
		Intakes:      NewIntakeStore(db),
		CheckIns:     NewCheckInStore(db),
		Worksheets:   NewWorksheetStore(db),
		Summaries:    NewSummaryStore(db),
	}
}
