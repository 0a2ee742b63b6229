package movies

// Summary is one row of a search result page.
type Summary struct {
	Title                string   `json:"title"`
	Year                 int      `json:"year"`
	IMDBID               string   `json:"imdbID"`
	IMDBRating           *float64 `json:"imdbRating"`
	RottenTomatoesRating *float64 `json:"rottenTomatoesRating"`
	MetacriticRating     *int     `json:"metacriticRating"`
	Classification       string   `json:"classification"`
}

// Rating is a single source/value pair on the details view.
type Rating struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// Principal is a cast or crew credit on the details view.
type Principal struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Name       string   `json:"name"`
	Characters []string `json:"characters"`
}

// Details is the full movie record.
type Details struct {
	Title      string      `json:"title"`
	Year       int         `json:"year"`
	Runtime    int         `json:"runtime"`
	Genres     []string    `json:"genres"`
	Country    string      `json:"country"`
	Principals []Principal `json:"principals"`
	Ratings    []Rating    `json:"ratings"`
	Boxoffice  *int64      `json:"boxoffice"`
	Poster     string      `json:"poster"`
	Plot       string      `json:"plot"`
}

// Pagination mirrors the search response envelope.
type Pagination struct {
	Total       int  `json:"total"`
	LastPage    int  `json:"lastPage"`
	PerPage     int  `json:"perPage"`
	CurrentPage int  `json:"currentPage"`
	From        int  `json:"from"`
	To          int  `json:"to"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

// SearchResult is a page of summaries plus its pagination envelope.
type SearchResult struct {
	Data       []Summary  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
