package identity

import (
	"context"
	"crypto/subtle"
	"strings"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/auth"
	"jjc-attendance/internal/logger"
)

var (
	errNotAllowed         = apperror.New(apperror.Forbidden, "auth.notAllowed")
	errIncomplete         = apperror.New(apperror.Validation, "auth.incomplete")
	errCredentialsMissing = apperror.New(apperror.Validation, "auth.credentialsRequired")
	errInvalidCredentials = apperror.New(apperror.Auth, "auth.invalidCredentials")
	errLoginRequired      = apperror.New(apperror.Auth, "auth.loginRequired")
	errNameEmailRequired  = apperror.New(apperror.Validation, "user.nameEmailRequired")
	errPasswordFields     = apperror.New(apperror.Validation, "user.passwordFieldsRequired")
	errOldPasswordWrong   = apperror.New(apperror.Validation, "user.oldPasswordWrong")
	errCannotDeleteSelf   = apperror.New(apperror.Validation, "user.cannotDeleteSelf")
)

// Patch holds the user fields an admin may change. Nil fields are left alone.
type Patch struct {
	Name   *string
	Email  *string
	Role   *string
	Active *bool
}

// Service implements registration, login and user management.
type Service struct {
	store       Store
	hasher      PasswordHasher
	adminSecret string
}

// NewService creates a user service. Registration is refused while
// adminSecret is empty.
func NewService(store Store, hasher PasswordHasher, adminSecret string) *Service {
	if hasher == nil {
		hasher = Bcrypt{}
	}
	return &Service{store: store, hasher: hasher, adminSecret: adminSecret}
}

// Register creates an account when secret matches the configured admin
// secret. role defaults to user.
func (s *Service) Register(ctx context.Context, secret, name, email, password, role string) (User, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) != 1 {
		return User{}, errNotAllowed
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return User{}, errIncomplete
	}
	u, err := s.create(ctx, name, email, password, auth.ParseRole(role))
	if err != nil {
		return User{}, storeErr(err, "auth.registerFailed")
	}
	logger.Infof("registered user %s (%s)", u.ID, u.Role)
	return u, nil
}

// Authenticate checks credentials of an active user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (auth.Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return auth.Identity{}, errCredentialsMissing
	}
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.NotFound) {
			return auth.Identity{}, errInvalidCredentials
		}
		return auth.Identity{}, apperror.Wrap(apperror.Internal, "auth.loginFailed", err)
	}
	if !u.Active || !s.hasher.Verify(u.PasswordHash, password) {
		return auth.Identity{}, errInvalidCredentials
	}
	return u.Identity(), nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, storeErr(err, "user.listFailed")
	}
	return u, nil
}

// List returns every user, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, storeErr(err, "user.listFailed")
	}
	return users, nil
}

// Create adds a user on behalf of an admin. When password is empty a
// temporary one is generated and returned; it is not retrievable later.
func (s *Service) Create(ctx context.Context, name, email, password, role string) (User, string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return User{}, "", errNameEmailRequired
	}
	var temp string
	if password == "" {
		temp = TempPassword()
		password = temp
	}
	u, err := s.create(ctx, name, email, password, auth.ParseRole(role))
	if err != nil {
		return User{}, "", storeErr(err, "user.createFailed")
	}
	logger.Infof("created user %s (%s)", u.ID, u.Role)
	return u, temp, nil
}

func (s *Service) create(ctx context.Context, name, email, password string, role auth.Role) (User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}
	return s.store.Create(ctx, User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	})
}

// Update applies p to the user with id.
func (s *Service) Update(ctx context.Context, id string, p Patch) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, storeErr(err, "user.updateFailed")
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Role != nil {
		u.Role = auth.ParseRole(*p.Role)
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	u, err = s.store.Update(ctx, u)
	if err != nil {
		return User{}, storeErr(err, "user.updateFailed")
	}
	return u, nil
}

// ResetPassword sets a new password for id. An empty newPassword generates a
// temporary one, which is returned.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) (string, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return "", storeErr(err, "user.resetFailed")
	}
	var temp string
	if newPassword == "" {
		temp = TempPassword()
		newPassword = temp
	}
	if u.PasswordHash, err = s.hasher.Hash(newPassword); err != nil {
		return "", apperror.Wrap(apperror.Internal, "user.resetFailed", err)
	}
	if _, err := s.store.Update(ctx, u); err != nil {
		return "", storeErr(err, "user.resetFailed")
	}
	logger.Infof("password reset for user %s", id)
	return temp, nil
}

// ChangePassword lets the caller replace their own password.
func (s *Service) ChangePassword(ctx context.Context, id *auth.Identity, oldPassword, newPassword string) error {
	if id == nil {
		return errLoginRequired
	}
	if oldPassword == "" || newPassword == "" {
		return errPasswordFields
	}
	u, err := s.store.FindByID(ctx, id.ID)
	if err != nil {
		return storeErr(err, "user.changePasswordFailed")
	}
	if !s.hasher.Verify(u.PasswordHash, oldPassword) {
		return errOldPasswordWrong
	}
	if u.PasswordHash, err = s.hasher.Hash(newPassword); err != nil {
		return apperror.Wrap(apperror.Internal, "user.changePasswordFailed", err)
	}
	if _, err := s.store.Update(ctx, u); err != nil {
		return storeErr(err, "user.changePasswordFailed")
	}
	return nil
}

// Delete removes a user. Callers cannot delete themselves.
func (s *Service) Delete(ctx context.Context, caller *auth.Identity, id string) error {
	if caller != nil && caller.ID == id {
		return errCannotDeleteSelf
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return storeErr(err, "user.deleteFailed")
	}
	logger.Infof("deleted user %s", id)
	return nil
}

// storeErr keeps classified store errors and wraps the rest as internal.
func storeErr(err error, key string) error {
	if apperror.KindOf(err) != apperror.Internal {
		return err
	}
	return apperror.Wrap(apperror.Internal, key, err)
}
