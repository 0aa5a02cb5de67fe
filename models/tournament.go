package models

import "time"

// TournamentStatus is derived from the tournament's date range and is never
// stored: the same tournament can be upcoming today and active tomorrow.
type TournamentStatus string

const (
	StatusUpcoming TournamentStatus = "upcoming"
	StatusActive   TournamentStatus = "active"
	StatusPast     TournamentStatus = "past"
)

// QuestionsPerTournament is fixed: every tournament holds exactly ten
// questions, numbered 1..10.
const QuestionsPerTournament = 10

// Categories maps OpenTDB category codes to display names. "0" means any
// category and is not sent to the API.
var Categories = map[string]string{
	"0":  "Any category",
	"9":  "General Knowledge",
	"10": "Books",
	"11": "Film",
	"12": "Music",
	"13": "Musicals & Theatres",
	"14": "Television",
	"15": "Video Games",
	"16": "Board Games",
	"17": "Science & Nature",
	"18": "Computers",
	"19": "Mathematics",
	"20": "Mythology",
	"21": "Sports",
	"22": "Geography",
	"23": "History",
	"24": "Politics",
	"25": "Art",
	"26": "Celebrities",
	"27": "Animals",
	"28": "Vehicles",
	"29": "Comics",
	"30": "Gadgets",
	"31": "Japanese Anime & Manga",
	"32": "Cartoon & Animations",
}

// Difficulties maps difficulty codes to display names. "0" means any.
var Difficulties = map[string]string{
	"0":      "Any difficulty",
	"easy":   "Easy",
	"medium": "Medium",
	"hard":   "Hard",
}

func ValidCategory(code string) bool {
	_, ok := Categories[code]
	return ok
}

func ValidDifficulty(code string) bool {
	_, ok := Difficulties[code]
	return ok
}

// Tournament is a named, dated set of ten trivia questions. Immutable after
// creation except for the logo.
type Tournament struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
	Category   string    `json:"category" db:"category"`
	Difficulty string    `json:"difficulty" db:"difficulty"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LogoKey    *string   `json:"-" db:"logo_key"`
	LogoURL    *string   `json:"logo_url,omitempty" db:"-"`
}

// truncateToDate reduces a time to its calendar day, anchored in UTC so
// that values carrying different zones compare as days, not instants.
// Stored dates are UTC midnight while "today" arrives in server-local time;
// truncating into each value's own zone would misclassify same-day
// boundaries on any non-UTC server.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Status classifies the tournament relative to today. Exactly one of
// upcoming/active/past holds for any (start, end, today) triple.
func (t *Tournament) Status(today time.Time) TournamentStatus {
	day := truncateToDate(today)
	start := truncateToDate(t.StartDate)
	end := truncateToDate(t.EndDate)

	switch {
	case day.Before(start):
		return StatusUpcoming
	case day.After(end):
		return StatusPast
	default:
		return StatusActive
	}
}

// IsActive reports whether players may interact with the tournament today.
func (t *Tournament) IsActive(today time.Time) bool {
	return t.Status(today) == StatusActive
}

// DatesValid reports start <= end, independent of today.
func (t *Tournament) DatesValid() bool {
	return !truncateToDate(t.StartDate).After(truncateToDate(t.EndDate))
}

// StartInPast reports whether the start date is strictly before today. Used
// only at creation time: a tournament starting today is allowed and becomes
// active immediately.
func (t *Tournament) StartInPast(today time.Time) bool {
	return truncateToDate(today).After(truncateToDate(t.StartDate))
}
