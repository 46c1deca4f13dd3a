package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kvvPro/foodcourt/cmd/foodcourt/auth"
	"github.com/kvvPro/foodcourt/internal/model"
	"github.com/kvvPro/foodcourt/internal/retry"
)

// RegisterUser creates the account and returns a fresh token.
func (srv *Server) RegisterUser(ctx context.Context, name, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", fmt.Errorf("%w: login and password are required", model.ErrInvalidRequest)
	}

	user := &model.User{
		Login:    login,
		Name:     name,
		Password: auth.HashPassword(login, password),
		Tier:     model.TierBronze,
	}

	err := retry.Do(func() error {
		return srv.storage.AddUser(ctx, user)
	}, storageRetryOpts(ctx)...)
	if err != nil {
		Sugar.Errorln(err)
		return "", err
	}

	return auth.BuildJWTString(user.Login, user.IsAdmin)
}

// LoginUser checks credentials and returns a token.
func (srv *Server) LoginUser(ctx context.Context, login, password string) (string, error) {
	user, err := srv.getUser(ctx, login)
	if err != nil {
		return "", err
	}

	if user.Password != auth.HashPassword(login, password) {
		return "", fmt.Errorf("%w: wrong login or password", model.ErrInvalidRequest)
	}

	return auth.BuildJWTString(user.Login, user.IsAdmin)
}

func (srv *Server) getUser(ctx context.Context, login string) (*model.User, error) {
	var err error
	var user *model.User

	err = retry.Do(func() error {
		user, err = srv.storage.GetUser(ctx, login)
		return err
	}, storageRetryOpts(ctx)...)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			Sugar.Errorln(err)
		}
		return nil, err
	}

	return user, nil
}
