package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

const userNotFound = "User not found"

type UserService struct {
	Repo *repo.GormRepo
	Auth *AuthService
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, userID, true)
	return u, dbErr(err, userNotFound)
}

func (s *UserService) List(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	total, users, err := s.Repo.ListUsers(ctx, offset, limit)
	return total, users, dbErr(err, "")
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.Me(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		return nil, fail(ErrValidation, "Invalid role %q", role)
	}
	return s.Auth.createUser(ctx, req.Name, req.Email, req.Password, role)
}

// Update applies the non-nil fields of req; allowRole gates role changes.
func (s *UserService) Update(ctx context.Context, id uint, req transport.UpdateUserRequest, allowRole bool) (*models.User, error) {
	if req.Name == nil && req.Email == nil && req.Role == nil {
		return nil, fail(ErrValidation, "No update fields provided")
	}

	u, err := s.Repo.GetUserByID(ctx, id, false)
	if err != nil {
		return nil, dbErr(err, userNotFound)
	}

	if req.Name != nil {
		u.Name = validation.Sanitize(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		taken, err := s.Repo.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, dbErr(err, "")
		}
		if taken {
			return nil, fail(ErrConflict, "User with this email already exists")
		}
		u.Email = email
	}
	if req.Role != nil {
		if !allowRole {
			return nil, fail(ErrForbidden, "Role can not be changed")
		}
		if !req.Role.Valid() {
			return nil, fail(ErrValidation, "Invalid role %q", *req.Role)
		}
		u.Role = *req.Role
	}

	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, dbErr(err, userNotFound)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return dbErr(s.Repo.DeleteUser(ctx, id), userNotFound)
}

const profileNotFound = "Profile not found"

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, userID)
	return p, dbErr(err, profileNotFound)
}

func (s *UserService) CreateProfile(ctx context.Context, userID uint, req transport.ProfileRequest) (*models.Profile, error) {
	if _, err := s.Repo.GetProfile(ctx, userID); err == nil {
		return nil, fail(ErrConflict, "Profile already exists")
	} else if err = dbErr(err, profileNotFound); !isNotFound(err) {
		return nil, err
	}

	p := &models.Profile{
		UserID:    userID,
		FirstName: validation.Sanitize(req.FirstName),
		LastName:  validation.Sanitize(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   validation.Sanitize(req.Address),
		City:      validation.Sanitize(req.City),
		Country:   validation.Sanitize(req.Country),
	}
	if err := s.Repo.CreateProfile(ctx, p); err != nil {
		return nil, dbErr(err, "")
	}
	return p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req transport.PatchProfileRequest) (*models.Profile, error) {
	p, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, dbErr(err, profileNotFound)
	}

	fields := []struct {
		src *string
		dst *string
	}{
		{req.FirstName, &p.FirstName},
		{req.LastName, &p.LastName},
		{req.Phone, &p.Phone},
		{req.Address, &p.Address},
		{req.City, &p.City},
		{req.Country, &p.Country},
	}
	changed := false
	for _, f := range fields {
		if f.src != nil {
			*f.dst = validation.Sanitize(*f.src)
			changed = true
		}
	}
	if !changed {
		return nil, fail(ErrValidation, "No update fields provided")
	}

	if err := s.Repo.SaveProfile(ctx, p); err != nil {
		return nil, dbErr(err, "")
	}
	return p, nil
}

func (s *UserService) DeleteProfile(ctx context.Context, userID uint) error {
	return dbErr(s.Repo.DeleteProfile(ctx, userID), profileNotFound)
}
