package model

// NoFavorite is reported for favorite author and genre when nothing was read.
const NoFavorite = "-"

// NoPlanInfo is reported as the percent when no target is set.
const NoPlanInfo = "no info provided"

// RangeStats is the reading statistics for one window.
type RangeStats struct {
	Info StatsInfo    `json:"info"`
	Plan PlanProgress `json:"plan"`
}

// StatsInfo summarizes finished books in the window.
type StatsInfo struct {
	Count          int    `json:"count"`
	FavoriteAuthor string `json:"fav_author"`
	FavoriteGenre  string `json:"fav_genre"`
}

// PlanProgress compares the finished count with the plan target.
type PlanProgress struct {
	Target  int    `json:"plan"`
	Count   int    `json:"count"`
	Percent string `json:"percent"`
}

// KeyCount is one group of a frequency vote (an author or a genre).
type KeyCount struct {
	Key   string
	Count int
}

// Favorites holds the majority-vote winners over a set of books.
type Favorites struct {
	Author string
	Genre  string
}

// Recommendations is the result of a recommendation request.
// NoHistory distinguishes a reader with an empty library from an empty result.
type Recommendations struct {
	NoHistory bool          `json:"no_history"`
	Books     []BookSummary `json:"books"`
}
