package importer

// Profile describes the column layout of a reading sheet.
type Profile struct {
	Name       string
	MeterCol   string
	CurrentCol string
	// NoteCol is optional.
	NoteCol string
}

func (p Profile) requiredCols() []string {
	return []string{p.MeterCol, p.CurrentCol}
}

// profiles is tried in order during header detection.
var profiles = []Profile{
	{
		Name:       "planilla",
		MeterCol:   "Medidor",
		CurrentCol: "Lectura actual",
		NoteCol:    "Observación",
	},
	{
		Name:       "planilla-corta",
		MeterCol:   "Medidor",
		CurrentCol: "Lectura",
		NoteCol:    "Obs",
	},
	{
		Name:       "export",
		MeterCol:   "meter_id",
		CurrentCol: "current_reading",
		NoteCol:    "note",
	},
}
