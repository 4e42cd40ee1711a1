package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/assetpro/internal/access"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/model"
	"github.com/erazemk/assetpro/internal/store"
)

// Bootstrap creates the admin account with the given password when the store
// has never had a user. It reports whether the account was created.
func (s *Service) Bootstrap(ctx context.Context, password string) (bool, error) {
	if password == "" {
		return false, invalid("bootstrap password is empty")
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return false, err
	}

	created := false
	err = s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := store.CountUsers(ctx, tx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = store.CreateUser(ctx, tx, model.NewUser{
			Username:    model.BootstrapUsername,
			DisplayName: "Administrator",
			Role:        model.RoleAdmin,
		}, hash)
		created = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("bootstrapping admin: %w", err)
	}
	if created {
		slog.Info("admin account created", "username", model.BootstrapUsername)
	}
	return created, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.Identity, error) {
	user, err := store.GetUserByUsername(ctx, s.db, username)
	if err != nil {
		return model.Identity{}, db.Classify(err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return model.Identity{}, model.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.Identity{}, model.ErrUnauthenticated
	}

	return user.Identity(), nil
}

// Identity resolves a user ID, typically a token subject, to the live
// identity of an active user.
func (s *Service) Identity(ctx context.Context, userID int64) (model.Identity, error) {
	user, err := store.GetUser(ctx, s.db, userID)
	if err != nil {
		return model.Identity{}, db.Classify(err)
	}
	if user == nil || user.DeletedAt != nil {
		return model.Identity{}, fmt.Errorf("%w: user %d is not active", model.ErrUnauthenticated, userID)
	}
	return user.Identity(), nil
}

// CreateUser creates a user. An empty role means model.RoleUser.
func (s *Service) CreateUser(ctx context.Context, actor model.Identity, nu model.NewUser) (*model.User, error) {
	if err := access.Check(actor, access.CreateUser); err != nil {
		return nil, err
	}

	nu.Username = strings.TrimSpace(nu.Username)
	nu.DisplayName = strings.TrimSpace(nu.DisplayName)
	if nu.Role == "" {
		nu.Role = model.RoleUser
	}
	switch {
	case nu.Username == "":
		return nil, invalid("username is required")
	case nu.DisplayName == "":
		return nil, invalid("display name is required")
	case nu.Password == "":
		return nil, invalid("password is required")
	case !model.ValidRole(nu.Role):
		return nil, invalid("unknown role %q", nu.Role)
	}

	hash, err := s.hashPassword(nu.Password)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		existing, err := store.GetUserByUsername(ctx, tx, nu.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", model.ErrDuplicateIdentity, nu.Username)
		}
		user, err = store.CreateUser(ctx, tx, nu, hash)
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", model.ErrDuplicateIdentity, nu.Username)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logMutation("user created", actor, "username", user.Username, "role", user.Role)
	return user, nil
}

// GetUser returns an active user by username.
func (s *Service) GetUser(ctx context.Context, actor model.Identity, username string) (*model.User, error) {
	if err := access.Check(actor, access.ListUsers); err != nil {
		return nil, err
	}
	user, err := store.GetUserByUsername(ctx, s.db, username)
	if err != nil {
		return nil, db.Classify(err)
	}
	if user == nil {
		return nil, notFound("user %s", username)
	}
	return user, nil
}

// ListUsers returns all active users ordered by username.
func (s *Service) ListUsers(ctx context.Context, actor model.Identity) ([]model.User, error) {
	if err := access.Check(actor, access.ListUsers); err != nil {
		return nil, err
	}
	users, err := store.ListUsers(ctx, s.db)
	if err != nil {
		return nil, db.Classify(err)
	}
	return users, nil
}

// UpdateUser changes a user's profile and role. The bootstrap admin and the
// actor themselves cannot lose the admin role.
func (s *Service) UpdateUser(ctx context.Context, actor model.Identity, username string, upd model.UserUpdate) (*model.User, error) {
	if err := access.Check(actor, access.UpdateUser); err != nil {
		return nil, err
	}

	upd.DisplayName = strings.TrimSpace(upd.DisplayName)
	switch {
	case upd.DisplayName == "":
		return nil, invalid("display name is required")
	case !model.ValidRole(upd.Role):
		return nil, invalid("unknown role %q", upd.Role)
	}

	if upd.Role != model.RoleAdmin {
		if username == model.BootstrapUsername {
			return nil, fmt.Errorf("%w: the %s account cannot be demoted", model.ErrForbidden, model.BootstrapUsername)
		}
		if username == actor.Username {
			return nil, fmt.Errorf("%w: cannot demote yourself", model.ErrForbidden)
		}
	}

	var user *model.User
	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		existing, err := store.GetUserByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound("user %s", username)
		}
		if err := store.UpdateUser(ctx, tx, existing.ID, upd); err != nil {
			return err
		}
		user, err = store.GetUser(ctx, tx, existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logMutation("user updated", actor, "username", username, "role", user.Role)
	return user, nil
}

// DeleteUser soft-deletes a user. The bootstrap admin and the actor cannot
// be deleted.
func (s *Service) DeleteUser(ctx context.Context, actor model.Identity, username string) error {
	if err := access.Check(actor, access.DeleteUser); err != nil {
		return err
	}
	if username == model.BootstrapUsername {
		return fmt.Errorf("%w: the %s account cannot be deleted", model.ErrForbidden, model.BootstrapUsername)
	}
	if username == actor.Username {
		return fmt.Errorf("%w: cannot delete yourself", model.ErrForbidden)
	}

	err := s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		user, err := store.GetUserByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if user == nil {
			return notFound("user %s", username)
		}
		return store.DeleteUser(ctx, tx, user.ID)
	})
	if err != nil {
		return err
	}

	logMutation("user deleted", actor, "username", username)
	return nil
}

// ResetPassword sets another user's password.
func (s *Service) ResetPassword(ctx context.Context, actor model.Identity, username, password string) error {
	if err := access.Check(actor, access.UpdateUser); err != nil {
		return err
	}
	if password == "" {
		return invalid("password is required")
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	err = s.tx(ctx, func(ctx context.Context, tx db.DBTX) error {
		user, err := store.GetUserByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if user == nil {
			return notFound("user %s", username)
		}
		return store.UpdateUserPassword(ctx, tx, user.ID, hash)
	})
	if err != nil {
		return err
	}

	logMutation("password reset", actor, "username", username)
	return nil
}

// ChangePassword changes the actor's own password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, actor model.Identity, current, next string) error {
	if err := access.Check(actor, access.ChangePassword); err != nil {
		return err
	}
	if current == "" || next == "" {
		return invalid("current and new password are required")
	}

	user, err := store.GetUser(ctx, s.db, actor.UserID)
	if err != nil {
		return db.Classify(err)
	}
	if user == nil || user.DeletedAt != nil {
		return model.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", model.ErrUnauthenticated)
	}

	hash, err := s.hashPassword(next)
	if err != nil {
		return err
	}
	if err := store.UpdateUserPassword(ctx, s.db, user.ID, hash); err != nil {
		return db.Classify(err)
	}

	logMutation("user changed own password", actor)
	return nil
}

