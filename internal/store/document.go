package store

import "sort"

// WorkoutEntry is a single logged exercise set.
type WorkoutEntry struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	Date     string  `json:"date"`
}

// Document is the whole persisted state. Every mapping is keyed by username,
// and every registered username has an entry in each of them.
type Document struct {
	UserAccounts map[string]string                    `json:"user_accounts"`
	WorkoutLogs  map[string]map[string][]WorkoutEntry `json:"workout_logs"`
	Exp          map[string]int                       `json:"exp"`
	CalorieLogs  map[string]map[string]int            `json:"calorie_logs"`
	WaterLogs    map[string]map[string]float64        `json:"water_logs"`
}

func NewDocument() *Document {
	return &Document{
		UserAccounts: map[string]string{},
		WorkoutLogs:  map[string]map[string][]WorkoutEntry{},
		Exp:          map[string]int{},
		CalorieLogs:  map[string]map[string]int{},
		WaterLogs:    map[string]map[string]float64{},
	}
}

func (d *Document) HasUser(username string) bool {
	_, ok := d.UserAccounts[username]
	return ok
}

// AddUser registers the digest and the empty per-user entries in one go.
func (d *Document) AddUser(username, digest string) {
	d.UserAccounts[username] = digest
	d.WorkoutLogs[username] = map[string][]WorkoutEntry{}
	d.Exp[username] = 0
	d.CalorieLogs[username] = map[string]int{}
	d.WaterLogs[username] = map[string]float64{}
}

// Usernames returns registered usernames, sorted.
func (d *Document) Usernames() []string {
	usernames := make([]string, 0, len(d.UserAccounts))
	for u := range d.UserAccounts {
		usernames = append(usernames, u)
	}
	sort.Strings(usernames)
	return usernames
}

// repairLockStep adds missing per-user entries for registered users and
// returns the usernames that needed it.
func (d *Document) repairLockStep() []string {
	var repaired []string
	for _, username := range d.Usernames() {
		fixed := false
		if d.WorkoutLogs[username] == nil {
			d.WorkoutLogs[username] = map[string][]WorkoutEntry{}
			fixed = true
		}
		if _, ok := d.Exp[username]; !ok {
			d.Exp[username] = 0
			fixed = true
		}
		if d.CalorieLogs[username] == nil {
			d.CalorieLogs[username] = map[string]int{}
			fixed = true
		}
		if d.WaterLogs[username] == nil {
			d.WaterLogs[username] = map[string]float64{}
			fixed = true
		}
		if fixed {
			repaired = append(repaired, username)
		}
	}
	return repaired
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := &Document{
		UserAccounts: make(map[string]string, len(d.UserAccounts)),
		WorkoutLogs:  make(map[string]map[string][]WorkoutEntry, len(d.WorkoutLogs)),
		Exp:          make(map[string]int, len(d.Exp)),
		CalorieLogs:  make(map[string]map[string]int, len(d.CalorieLogs)),
		WaterLogs:    make(map[string]map[string]float64, len(d.WaterLogs)),
	}

	for u, digest := range d.UserAccounts {
		c.UserAccounts[u] = digest
	}
	for u, exp := range d.Exp {
		c.Exp[u] = exp
	}
	for u, days := range d.WorkoutLogs {
		cDays := make(map[string][]WorkoutEntry, len(days))
		for day, entries := range days {
			cDays[day] = append([]WorkoutEntry(nil), entries...)
		}
		c.WorkoutLogs[u] = cDays
	}
	for u, dates := range d.CalorieLogs {
		cDates := make(map[string]int, len(dates))
		for date, calories := range dates {
			cDates[date] = calories
		}
		c.CalorieLogs[u] = cDates
	}
	for u, dates := range d.WaterLogs {
		cDates := make(map[string]float64, len(dates))
		for date, ounces := range dates {
			cDates[date] = ounces
		}
		c.WaterLogs[u] = cDates
	}

	return c
}
