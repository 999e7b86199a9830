package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

var JWT_LIFESPAN = time.Hour

var (
	ErrTokenMissing = errors.New("Bearer token not provided")
	ErrTokenInvalid = errors.New("Invalid token")
	ErrTokenExpired = errors.New("Token has expired")
)

type tokenKey struct{}

// Operator may watch and steer the agent through the monitor.
type Operator struct {
	ID       int    `storm:"increment"`
	Email    string `storm:"unique"`
	Password string // bcrypt hash
}

func (o *Operator) SetPassword(pass []byte) error {
	hash, err := bcrypt.GenerateFromPassword(pass, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.Password = string(hash)
	return nil
}

// VerifyPassword returns the bcrypt error unchanged, so a wrong password is
// bcrypt.ErrMismatchedHashAndPassword.
func (o *Operator) VerifyPassword(pass []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(o.Password), pass)
}

func addOperator(db *storm.DB, email, password string) error {
	op := &Operator{Email: email}
	if err := op.SetPassword([]byte(password)); err != nil {
		return err
	}
	return db.Save(op)
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *LoginPayload) Bind(r *http.Request) error {
	if l.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

type TokenPayload struct {
	Token string `json:"token"`
}

func signToken(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.StandardClaims{
		Issuer:    ENV.JWT_ISSUER,
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(JWT_LIFESPAN).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(ENV.JWT_SECRET))
}

func parseToken(ts string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(ts, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, ErrTokenInvalid
		}
		return []byte(ENV.JWT_SECRET), nil
	})
	if verr, ok := err.(*jwt.ValidationError); ok && verr.Errors&jwt.ValidationErrorExpired != 0 {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Login exchanges an operator's email and password for a token.
func Login(w http.ResponseWriter, r *http.Request) {
	data := &LoginPayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	var op Operator
	switch err := ENV.DB.One("Email", data.Email, &op); err {
	case nil:
	case storm.ErrNotFound:
		render.Render(w, r, ErrNotFound)
		return
	default:
		render.Render(w, r, ErrRender(err))
		return
	}

	switch err := op.VerifyPassword([]byte(data.Password)); err {
	case nil:
	case bcrypt.ErrMismatchedHashAndPassword:
		render.Render(w, r, ErrPermissionDenied(errors.New("Invalid password")))
		return
	default:
		render.Render(w, r, ErrRender(err))
		return
	}

	ts, err := signToken(op.Email)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.JSON(w, r, TokenPayload{ts})
}

// RefreshToken issues a fresh token for the operator ValidateJWT let through.
func RefreshToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(tokenKey{}).(*jwt.StandardClaims)
	if !ok {
		render.Render(w, r, ErrUnauthorized(ErrTokenMissing))
		return
	}

	ts, err := signToken(claims.Subject)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.JSON(w, r, TokenPayload{ts})
}

func tokenFromRequest(r *http.Request) string {
	if ts := r.URL.Query().Get("jwt"); ts != "" {
		return ts
	}

	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:6]) == "BEARER" {
		return bearer[7:]
	}

	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

// ValidateJWT only lets requests with a valid token through. The token may be
// given as a jwt query parameter, a bearer header or a jwt cookie.
func ValidateJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts := tokenFromRequest(r)
		if ts == "" {
			render.Render(w, r, ErrUnauthorized(ErrTokenMissing))
			return
		}

		claims, err := parseToken(ts)
		if err != nil {
			render.Render(w, r, ErrUnauthorized(err))
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
