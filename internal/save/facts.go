package save

import "slices"

// Facts is the slice of a save file the predictors read. Callers pass it by
// value; predictors never write to it.
type Facts struct {
	GameID        uint64  `json:"game_id"`
	MultiplayerID int64   `json:"multiplayer_id"`
	DaysPlayed    uint32  `json:"days_played"`
	DailyLuck     float64 `json:"daily_luck"`

	GeodesCracked    uint32 `json:"geodes_cracked"`
	TrashCansChecked uint32 `json:"trash_cans_checked"`
	DeepestMineLevel int    `json:"deepest_mine_level"`

	HasTrashBook  bool `json:"has_trash_book"`  // "Book_Trash" stat set
	QiBeansActive bool `json:"qi_beans_active"` // DROP_QI_BEANS special order rule
	WeddingToday  bool `json:"wedding_today"`
	ChildEligible bool `json:"child_eligible"`

	// Mail holds received mail flags. Treat as read-only.
	Mail []string `json:"mail,omitempty"`
}

// OnceFlags are the two once-per-save events. They are owned by the caller
// and only ever set by the night-event predictor through a pointer.
type OnceFlags struct {
	StumpFell   bool `json:"stump_fell"`
	CapsuleSeen bool `json:"capsule_seen"`
}

func (f Facts) Date() Date {
	return DateFromDaysPlayed(f.DaysPlayed)
}

func (f Facts) HasMail(flag string) bool {
	return slices.Contains(f.Mail, flag)
}

// WithDay returns a copy of f moved to another day counter.
func (f Facts) WithDay(days uint32) Facts {
	f.DaysPlayed = days
	return f
}
