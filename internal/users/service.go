package users

import (
	"context"
	"errors"

	"github.com/notewall/notewall/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Mailer delivers generated credentials to a freshly registered account.
type Mailer interface {
	SendCredentials(ctx context.Context, to, firstName, password string) error
}

// Service encapsulates account business logic.
type Service struct {
	repo   UserRepository
	mailer Mailer
}

func NewService(repo UserRepository, mailer Mailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

// Register creates an account with a server-generated password and mails the
// credentials to the given address. The plaintext password never leaves this
// method except through the mailer.
func (s *Service) Register(ctx context.Context, firstName, lastName, email string) (*models.User, error) {
	generated := GeneratePassword(firstName, lastName)
	hashed, err := HashPassword(generated)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  hashed,
	})
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendCredentials(ctx, email, firstName, generated); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies the email/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := VerifyPassword(u.Password, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
