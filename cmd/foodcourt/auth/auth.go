package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kvvPro/foodcourt/internal/model"
)

// Claims carry the authenticated login and the admin flag next to the
// standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserLogin string
	IsAdmin   bool
}

const tokenExp = time.Hour * 3
const secretKey = "supersecretkey"
const passwordSalt = "foodcourt-static-salt"

// BuildJWTString создаёт токен и возвращает его в виде строки.
func BuildJWTString(login string, isAdmin bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExp)),
		},
		UserLogin: login,
		IsAdmin:   isAdmin,
	})

	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetUserInfo(tokenString string) (*model.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secretKey), nil
		})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return &model.User{
			Login:   claims.UserLogin,
			IsAdmin: claims.IsAdmin},
		nil
}

// HashPassword makes the stored form of a password.
func HashPassword(login string, password string) string {
	sum := sha256.Sum256([]byte(passwordSalt + login + password))
	return hex.EncodeToString(sum[:])
}
