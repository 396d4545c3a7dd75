package handler

import (
	"net/http"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

// ReadScope decides whose rows a list read returns.
//
//	authenticated caller                → their own rows
//	anonymous, PublicReads == true      → rows of every owner
//	anonymous, PublicReads == false     → 401
//
// PublicReads exposes every user's library to anyone who can reach the
// server. It is off unless the config turns it on.
type ReadScope struct {
	PublicReads bool
}

// owner returns the scope for r, or an unauthorized error.
func (s ReadScope) owner(r *http.Request) (int64, error) {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return u.ID, nil
	}
	if s.PublicReads {
		return repository.AllOwners, nil
	}
	return 0, errAuthRequired()
}

// currentUser returns the user put in the context by Guard.RequireUser.
func currentUser(r *http.Request) (*model.User, error) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, errAuthRequired()
	}
	return u, nil
}

func errAuthRequired() error {
	return apperror.Unauthorized("valid authentication required")
}
