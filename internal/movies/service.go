package movies

import (
	"context"
	"regexp"
	"strconv"
)

// PerPage is the fixed page size of search results.
const PerPage = 100

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ValidationError marks a bad query parameter; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Service applies query validation and pagination on top of a Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search validates the raw title/year/page query values, runs the search
// and wraps the page in its pagination envelope.
func (s *Service) Search(ctx context.Context, title, yearParam, pageParam string) (*SearchResult, error) {
	year := 0
	if yearParam != "" {
		if !yearPattern.MatchString(yearParam) {
			return nil, &ValidationError{Message: "Invalid year format. Format must be yyyy."}
		}
		year, _ = strconv.Atoi(yearParam)
	}

	page := 1
	if pageParam != "" {
		p, err := strconv.Atoi(pageParam)
		if err != nil || p < 1 {
			return nil, &ValidationError{Message: "Invalid page format. page must be a number."}
		}
		page = p
	}

	offset := (page - 1) * PerPage
	data, total, err := s.repo.Search(ctx, title, year, PerPage, offset)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []Summary{}
	}

	lastPage := (total + PerPage - 1) / PerPage
	if lastPage == 0 {
		lastPage = 1
	}

	pg := Pagination{
		Total:       total,
		LastPage:    lastPage,
		PerPage:     PerPage,
		CurrentPage: page,
		From:        offset,
		To:          offset + len(data),
	}
	if page > 1 {
		prev := page - 1
		pg.PrevPage = &prev
	}
	if page < lastPage {
		next := page + 1
		pg.NextPage = &next
	}

	return &SearchResult{Data: data, Pagination: pg}, nil
}

// Details returns the full record for an imdbID.
func (s *Service) Details(ctx context.Context, imdbID string) (*Details, error) {
	return s.repo.Details(ctx, imdbID)
}
