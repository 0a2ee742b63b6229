package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/filmatlas/filmatlas/internal/models"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password; the message must never reveal which.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError is a terminal 400-class input failure with a
// user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service encapsulates registration, credential checks and profile
// access rules.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Register creates a new account. Email format and password length are
// validated here; duplicate emails surface as ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Message: "Invalid email format"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Message: "Password must be at least 6 characters long"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies the email/password pair. Unknown email and bad
// password both return ErrInvalidCredentials so the response cannot be
// used to probe which emails are registered.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ProfileView is the profile response shape. DOB and Address are only
// present for the owner.
type ProfileView struct {
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	DOB       *string `json:"dob,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// Profile returns the profile for email. viewerID is the authenticated
// user id, or empty for anonymous callers; only the owner sees dob and
// address.
func (s *Service) Profile(ctx context.Context, email, viewerID string) (*ProfileView, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if viewerID != "" && viewerID == u.ID {
		if u.DOB != nil {
			d := u.DOB.Format("2006-01-02")
			view.DOB = &d
		}
		view.Address = u.Address
	}
	return view, nil
}

// ProfileInput is the raw PUT body; fields are pointers so missing keys
// can be told apart from empty strings, and DOB stays a string until
// validated.
type ProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	DOB       *string `json:"dob"`
	Address   *string `json:"address"`
}

// UpdateProfile applies the profile update for email on behalf of
// viewerID. All four fields are required, dob must be a real past date
// in YYYY-MM-DD, and only the owner may update.
func (s *Service) UpdateProfile(ctx context.Context, email, viewerID string, in ProfileInput) (*models.User, error) {
	if in.FirstName == nil || in.LastName == nil || in.DOB == nil || in.Address == nil {
		return nil, &ValidationError{Message: "Request body incomplete: firstName, lastName, dob and address are required."}
	}
	dob, err := time.Parse("2006-01-02", *in.DOB)
	if err != nil {
		return nil, &ValidationError{Message: "Invalid input: dob must be a real date in format YYYY-MM-DD."}
	}
	if dob.After(time.Now()) {
		return nil, &ValidationError{Message: "Invalid input: dob must be a date in the past."}
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.ID != viewerID {
		return nil, ErrForbidden
	}

	return s.repo.UpdateProfile(ctx, email, Profile{
		FirstName: *in.FirstName,
		LastName:  *in.LastName,
		DOB:       dob,
		Address:   *in.Address,
	})
}
