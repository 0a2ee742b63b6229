package movies

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PostgresRepository reads the catalog tables (basics, principals) over
// database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Search(ctx context.Context, title string, year, limit, offset int) ([]Summary, int, error) {
	where := `WHERE 1=1`
	args := []any{}
	if title != "" {
		args = append(args, "%"+title+"%")
		where += fmt.Sprintf(` AND primary_title ILIKE $%d`, len(args))
	}
	if year != 0 {
		args = append(args, year)
		where += fmt.Sprintf(` AND year = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM basics `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT primary_title, year, tconst, imdb_rating, rottentomatoes_rating, metacritic_rating, rated
		FROM basics
		%s
		ORDER BY LOWER(tconst) ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var imdb, rt sql.NullFloat64
		var metacritic sql.NullInt64
		var rated sql.NullString
		if err := rows.Scan(&s.Title, &s.Year, &s.IMDBID, &imdb, &rt, &metacritic, &rated); err != nil {
			return nil, 0, fmt.Errorf("scan movie row: %w", err)
		}
		if imdb.Valid {
			s.IMDBRating = &imdb.Float64
		}
		if rt.Valid {
			s.RottenTomatoesRating = &rt.Float64
		}
		if metacritic.Valid {
			m := int(metacritic.Int64)
			s.MetacriticRating = &m
		}
		s.Classification = rated.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movie rows: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) Details(ctx context.Context, imdbID string) (*Details, error) {
	var d Details
	var genres, country, plot, poster sql.NullString
	var runtime sql.NullInt64
	var boxoffice sql.NullInt64
	var imdb, rt sql.NullFloat64
	var metacritic sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT primary_title, year, runtime_minutes, genres, country, plot, poster, boxoffice,
		       imdb_rating, rottentomatoes_rating, metacritic_rating
		FROM basics
		WHERE tconst = $1
	`, imdbID).Scan(&d.Title, &d.Year, &runtime, &genres, &country, &plot, &poster, &boxoffice, &imdb, &rt, &metacritic)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query movie: %w", err)
	}

	d.Runtime = int(runtime.Int64)
	d.Genres = splitGenres(genres.String)
	d.Country = country.String
	d.Plot = plot.String
	d.Poster = poster.String
	if boxoffice.Valid {
		d.Boxoffice = &boxoffice.Int64
	}
	if imdb.Valid {
		d.Ratings = append(d.Ratings, Rating{Source: "Internet Movie Database", Value: imdb.Float64})
	}
	if rt.Valid {
		d.Ratings = append(d.Ratings, Rating{Source: "Rotten Tomatoes", Value: rt.Float64})
	}
	if metacritic.Valid {
		d.Ratings = append(d.Ratings, Rating{Source: "Metacritic", Value: float64(metacritic.Int64)})
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.nconst, p.category, n.primary_name, p.characters
		FROM principals p
		JOIN names n ON n.nconst = p.nconst
		WHERE p.tconst = $1
		ORDER BY p.ordering ASC
	`, imdbID)
	if err != nil {
		return nil, fmt.Errorf("query principals: %w", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var p Principal
		var characters sql.NullString
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &characters); err != nil {
			return nil, fmt.Errorf("scan principal row: %w", err)
		}
		p.Characters = parseCharacters(characters.String)
		key := p.ID + "/" + p.Category
		if seen[key] {
			continue
		}
		seen[key] = true
		d.Principals = append(d.Principals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate principal rows: %w", err)
	}
	if d.Principals == nil {
		d.Principals = []Principal{}
	}
	if d.Ratings == nil {
		d.Ratings = []Rating{}
	}
	return &d, nil
}

func splitGenres(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// characters are stored as a JSON array string, e.g. ["Batman"]
func parseCharacters(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{}
	}
	return out
}
