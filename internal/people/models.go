package people

// Role is one credit a person holds on a movie.
type Role struct {
	MovieName  string   `json:"movieName"`
	MovieID    string   `json:"movieId"`
	Category   string   `json:"category"`
	Characters []string `json:"characters"`
	IMDBRating *float64 `json:"imdbRating"`
}

// Person is the full person record with every credited role.
type Person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birthYear"`
	DeathYear *int   `json:"deathYear"`
	Roles     []Role `json:"roles"`
}
