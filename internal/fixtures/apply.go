package fixtures

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applicant-tracker/internal/db"
)

// hashConcurrency bounds the number of bcrypt computations in flight
const hashConcurrency = 4

// Store is the subset of the database used to apply a fixture.
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	CreateUser(ctx context.Context, input *db.UserCreateInput) (*db.User, error)
	GrantCapability(ctx context.Context, userID int64, capability string) error
	GetApplicantByUserID(ctx context.Context, userID int64) (*db.Applicant, error)
	CreateApplicant(ctx context.Context, userID int64, phoneNumber, linkedInURL string) (*db.Applicant, error)
	GetJobByTitle(ctx context.Context, title string) (*db.Job, error)
	CreateJob(ctx context.Context, input *db.JobCreateInput) (*db.Job, error)
}

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	HashPassword(pw string) (string, error)
}

// Result reports what Apply created and what already existed.
type Result struct {
	// Users holds every fixture user in fixture order, created or reused
	Users []*db.User

	UsersCreated      int
	UsersReused       int
	ApplicantsCreated int
	ApplicantsReused  int
	JobsCreated       int
	JobsReused        int
}

// Apply creates the fixture's users, applicant profiles and jobs. Entries that
// already exist (by username or job title) are reused, so applying the same
// fixture twice is harmless. Capabilities are granted on reused users too.
// Passwords of existing users are left untouched.
func Apply(ctx context.Context, store Store, fx *Fixture, hasher PasswordHasher) (*Result, error) {
	res := &Result{Users: make([]*db.User, len(fx.Users))}

	var missing []int
	for i, u := range fx.Users {
		existing, err := store.GetUserByUsername(ctx, u.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			res.Users[i] = existing
			res.UsersReused++
			continue
		}
		missing = append(missing, i)
	}

	hashes, err := hashPasswords(ctx, fx, missing, hasher)
	if err != nil {
		return nil, err
	}

	for n, i := range missing {
		u := fx.Users[i]
		created, err := store.CreateUser(ctx, &db.UserCreateInput{
			Username:     u.Username,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
			PasswordHash: hashes[n],
		})
		if err != nil {
			return nil, err
		}
		res.Users[i] = created
		res.UsersCreated++
	}

	byUsername := make(map[string]*db.User, len(res.Users))
	for i, u := range fx.Users {
		user := res.Users[i]
		byUsername[u.Username] = user
		for _, c := range u.Capabilities {
			if err := store.GrantCapability(ctx, user.ID, c); err != nil {
				return nil, err
			}
		}
	}

	for _, a := range fx.Applicants {
		user, ok := byUsername[a.Username]
		if !ok {
			user, err = store.GetUserByUsername(ctx, a.Username)
			if err != nil {
				return nil, err
			}
			if user == nil {
				return nil, fmt.Errorf("applicant %q: %w", a.Username, db.ErrNotFound)
			}
		}
		existing, err := store.GetApplicantByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			res.ApplicantsReused++
			continue
		}
		if _, err := store.CreateApplicant(ctx, user.ID, a.PhoneNumber, a.LinkedInURL); err != nil {
			return nil, err
		}
		res.ApplicantsCreated++
	}

	for _, j := range fx.Jobs {
		existing, err := store.GetJobByTitle(ctx, j.Title)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			res.JobsReused++
			continue
		}
		if _, err := store.CreateJob(ctx, &db.JobCreateInput{
			Title:       j.Title,
			Description: j.Description,
			Location:    j.Location,
			WorkModel:   j.WorkModel,
			Status:      j.Status,
		}); err != nil {
			return nil, err
		}
		res.JobsCreated++
	}

	return res, nil
}

// hashPasswords hashes the passwords of the users at the given indexes.
// It must not touch the store: a transaction is not safe for concurrent use.
func hashPasswords(ctx context.Context, fx *Fixture, indexes []int, hasher PasswordHasher) ([]string, error) {
	hashes := make([]string, len(indexes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(hashConcurrency)
	for n, i := range indexes {
		u := fx.Users[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := hasher.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("user %q: %w", u.Username, err)
			}
			hashes[n] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}
