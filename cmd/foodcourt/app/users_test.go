package app

import (
	"context"
	"errors"
	"testing"

	"github.com/kvvPro/foodcourt/cmd/foodcourt/auth"
	"github.com/kvvPro/foodcourt/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, _ := newTestServer(t, gw.URL)
	ctx := context.Background()

	token, err := srv.RegisterUser(ctx, "New User", "newuser", "secret")
	if err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	userInfo, err := auth.GetUserInfo(token)
	if err != nil {
		t.Fatalf("registration token is invalid: %v", err)
	}
	if userInfo.Login != "newuser" || userInfo.IsAdmin {
		t.Errorf("unexpected token claims: %+v", userInfo)
	}

	if _, err := srv.RegisterUser(ctx, "Imposter", "newuser", "other"); !errors.Is(err, model.ErrLoginTaken) {
		t.Errorf("duplicate RegisterUser() error = %v, want ErrLoginTaken", err)
	}

	if _, err := srv.LoginUser(ctx, "newuser", "secret"); err != nil {
		t.Errorf("LoginUser() error = %v", err)
	}
	if _, err := srv.LoginUser(ctx, "newuser", "wrong"); !errors.Is(err, model.ErrInvalidRequest) {
		t.Errorf("LoginUser() with wrong password error = %v, want ErrInvalidRequest", err)
	}
	if _, err := srv.LoginUser(ctx, "ghost", "secret"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("LoginUser() for unknown login error = %v, want ErrNotFound", err)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	gw := newFakeGateway(t)
	defer gw.Close()
	srv, _ := newTestServer(t, gw.URL)

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{name: "empty_login", login: "", password: "secret"},
		{name: "empty_password", login: "someone", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := srv.RegisterUser(context.Background(), "", tt.login, tt.password); !errors.Is(err, model.ErrInvalidRequest) {
				t.Errorf("RegisterUser() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}
