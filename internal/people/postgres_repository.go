package people

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresRepository reads the names and principals tables over
// database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Person, error) {
	var p Person
	var birth, death sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT primary_name, birth_year, death_year
		FROM names
		WHERE nconst = $1
	`, id).Scan(&p.Name, &birth, &death)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query person: %w", err)
	}
	if birth.Valid {
		y := int(birth.Int64)
		p.BirthYear = &y
	}
	if death.Valid {
		y := int(death.Int64)
		p.DeathYear = &y
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT b.primary_title, p.tconst, p.category, p.characters, b.imdb_rating
		FROM principals p
		JOIN basics b ON b.tconst = p.tconst
		WHERE p.nconst = $1
		ORDER BY LOWER(p.tconst) ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role Role
		var characters sql.NullString
		var rating sql.NullFloat64
		if err := rows.Scan(&role.MovieName, &role.MovieID, &role.Category, &characters, &rating); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		role.Characters = parseCharacters(characters.String)
		if rating.Valid {
			role.IMDBRating = &rating.Float64
		}
		p.Roles = append(p.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role rows: %w", err)
	}
	if p.Roles == nil {
		p.Roles = []Role{}
	}
	return &p, nil
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
