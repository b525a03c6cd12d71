package record

// rawRecord is the decode target: the current schema plus every legacy
// field shape we still upgrade. Timestamp annotation (repair #1) lives in
// Timestamp.UnmarshalYAML; the remaining repairs happen in normalize().
type rawRecord struct {
	Title     string     `yaml:"title"`
	Text      string     `yaml:"text"` // legacy name for title
	Notes     string     `yaml:"notes"`
	Checklist []string   `yaml:"checklist"`
	Repeat    rawRepeat  `yaml:"repeat"`
	Current   *Instance  `yaml:"current"`
	Previous  *Closed    `yaml:"previous"`
	Next      *Timestamp `yaml:"next"`
}

// rawRepeat accepts both the current two-slot policy and the legacy flat
// {min, max} form that predates the completion/deletion split.
type rawRepeat struct {
	OnCompletion *Interval `yaml:"onCompletion"`
	OnDeletion   *Interval `yaml:"onDeletion"`
	Min          *int      `yaml:"min"`
	Max          *int      `yaml:"max"`
}

// normalize upgrades any historical record shape to the current one. Each
// repair is applied unconditionally and independently, and applying them to
// an already-current record changes nothing.
func (raw *rawRecord) normalize() *Record {
	rec := &Record{
		Title:     raw.Title,
		Notes:     raw.Notes,
		Checklist: raw.Checklist,
		Repeat: Repeat{
			OnCompletion: raw.Repeat.OnCompletion,
			OnDeletion:   raw.Repeat.OnDeletion,
		},
		Current:  raw.Current,
		Previous: raw.Previous,
		Next:     raw.Next,
	}

	// Legacy "text" key becomes "title" when no title is present.
	if rec.Title == "" && raw.Text != "" {
		rec.Title = raw.Text
	}

	// Checklist is always a sequence, possibly empty.
	if rec.Checklist == nil {
		rec.Checklist = []string{}
	}

	// Legacy flat {min, max} policy predates the deletion slot: it only
	// ever meant "reschedule on completion".
	if raw.Repeat.Min != nil {
		mx := 0
		if raw.Repeat.Max != nil {
			mx = *raw.Repeat.Max
		}
		rec.Repeat = Repeat{
			OnCompletion: &Interval{Min: *raw.Repeat.Min, Max: mx},
			OnDeletion:   nil,
		}
	}

	return rec
}
