package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type UserService struct {
	users     repository.UserRepository
	addresses repository.AddressRepository
	carts     *CartService
	logger    zerolog.Logger
}

func NewUserService(users repository.UserRepository, addresses repository.AddressRepository, carts *CartService, logger zerolog.Logger) *UserService {
	return &UserService{
		users:     users,
		addresses: addresses,
		carts:     carts,
		logger:    logger,
	}
}

type SignUpInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Photo    string
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, validationError("All fields are required.")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, validationError("Invalid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("Password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNo:      in.Phone,
		PasswordHash: string(hash),
		Photo:        in.Photo,
	}

	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, Errorf(CodeConflict, "Email already exists.")
		}
		return nil, err
	}

	return user, nil
}

// SignIn verifies credentials and returns the user. The same message covers
// an unknown email and a wrong password.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, validationError("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, Errorf(CodeUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, Errorf(CodeUnauthorized, "Invalid email or password")
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, notFoundError("User not found")
	}
	return user, err
}

type UpdateProfileInput struct {
	Name            string
	Email           string
	PhoneNo         string
	Photo           string
	Password        string
	CurrentPassword string
}

// UpdateProfile applies the non-empty fields. A password change requires the
// correct current password and a genuinely new password.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, targetID string, in UpdateProfileInput) (*domain.User, error) {
	if callerID != targetID {
		return nil, forbiddenError("Forbidden")
	}

	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		user.Name = strings.TrimSpace(in.Name)
	}
	if in.Email != "" {
		if !emailPattern.MatchString(in.Email) {
			return nil, validationError("Invalid email")
		}
		user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	if in.PhoneNo != "" {
		user.PhoneNo = in.PhoneNo
	}
	if in.Photo != "" {
		user.Photo = in.Photo
	}

	if in.Password != "" {
		if in.CurrentPassword == "" {
			return nil, validationError("Current password is required")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return nil, validationError("Current password is incorrect")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) == nil {
			return nil, validationError("New password must be different")
		}
		if len(in.Password) < minPasswordLength {
			return nil, validationError("New password must be at least %d characters", minPasswordLength)
		}
		hash, errHash := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if errHash != nil {
			return nil, errHash
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, Errorf(CodeConflict, "Email already exists.")
		}
		return nil, err
	}

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, callerID, targetID, currentPassword, newPassword string) error {
	_, err := s.UpdateProfile(ctx, callerID, targetID, UpdateProfileInput{
		Password:        newPassword,
		CurrentPassword: currentPassword,
	})
	return err
}

// DeleteAccount removes the user after re-verifying the password, along with
// the cart and address records that belong to them.
func (s *UserService) DeleteAccount(ctx context.Context, callerID, targetID, password string) error {
	if callerID != targetID {
		return forbiddenError("Forbidden")
	}

	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return validationError("Password is incorrect")
	}

	if err := s.users.DeleteUser(ctx, targetID); err != nil {
		return err
	}

	if err := s.carts.ClearCart(ctx, targetID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", targetID).Msg("failed to clear cart on account deletion")
	}
	if err := s.addresses.DeleteAddress(ctx, targetID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", targetID).Msg("failed to delete address on account deletion")
	}

	return nil
}

func (s *UserService) GetAddress(ctx context.Context, userID string) (*domain.Address, error) {
	address, err := s.addresses.GetAddress(ctx, userID)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return nil, notFoundError("Address not found")
	}
	return address, err
}

type SaveAddressInput struct {
	Address  string
	Pincode  string
	City     string
	State    string
	Landmark string
}

func (s *UserService) SaveAddress(ctx context.Context, userID string, in SaveAddressInput) (*domain.Address, error) {
	if in.Address == "" || in.Pincode == "" || in.City == "" || in.State == "" {
		return nil, validationError("Address, pincode, city and state are required")
	}

	address := &domain.Address{
		UserID:   userID,
		Address:  in.Address,
		Pincode:  in.Pincode,
		City:     in.City,
		State:    in.State,
		Landmark: in.Landmark,
	}

	if err := s.addresses.UpsertAddress(ctx, address); err != nil {
		return nil, err
	}

	return address, nil
}
