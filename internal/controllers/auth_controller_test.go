package controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/controllers"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

type fakeAuthService struct {
	signupFn  func(ctx context.Context, in services.SignupInput) (*models.User, string, error)
	loginFn   func(ctx context.Context, in services.LoginInput) (*models.User, string, error)
	profileFn func(ctx context.Context, caller auth.Identity, in services.ProfileInput) (*models.User, error)
	usersFn   func(ctx context.Context) ([]models.User, error)
}

func (f *fakeAuthService) Signup(ctx context.Context, in services.SignupInput) (*models.User, string, error) {
	return f.signupFn(ctx, in)
}
func (f *fakeAuthService) Login(ctx context.Context, in services.LoginInput) (*models.User, string, error) {
	return f.loginFn(ctx, in)
}
func (f *fakeAuthService) UpdateProfile(ctx context.Context, caller auth.Identity, in services.ProfileInput) (*models.User, error) {
	return f.profileFn(ctx, caller, in)
}
func (f *fakeAuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return f.usersFn(ctx)
}

func TestSignup(t *testing.T) {
	svc := &fakeAuthService{
		signupFn: func(ctx context.Context, in services.SignupInput) (*models.User, string, error) {
			if in.Email == "taken@example.com" {
				return nil, "", apperrors.NewConflict("Already registered please login")
			}
			return &models.User{ID: primitive.NewObjectID(), Name: in.Name, Email: in.Email, Password: "hash", Role: auth.RoleBuyer}, "tok", nil
		},
	}
	r := newRouter()
	r.POST("/signup", controllers.NewAuthController(svc).Signup)

	w := performJSON(r, http.MethodPost, "/signup", map[string]string{"name": "Jane", "email": "jane@example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tok", body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "jane@example.com", user["email"])
	assert.NotContains(t, user, "password")

	w = performJSON(r, http.MethodPost, "/signup", map[string]string{"email": "taken@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestSignupMalformedBody(t *testing.T) {
	r := newRouter()
	r.POST("/signup", controllers.NewAuthController(&fakeAuthService{}).Signup)

	w := performJSON(r, http.MethodPost, "/signup", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	svc := &fakeAuthService{
		loginFn: func(ctx context.Context, in services.LoginInput) (*models.User, string, error) {
			switch in.Email {
			case "jane@example.com":
				return &models.User{Email: in.Email}, "tok", nil
			case "nobody@example.com":
				return nil, "", apperrors.NewNotFound("Email is not registered")
			default:
				return nil, "", apperrors.NewUnauthenticated("Invalid password")
			}
		},
	}
	r := newRouter()
	r.POST("/login", controllers.NewAuthController(svc).Login)

	w := performJSON(r, http.MethodPost, "/login", map[string]string{"email": "jane@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "login success", decode(t, w)["msg"])

	w = performJSON(r, http.MethodPost, "/login", map[string]string{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performJSON(r, http.MethodPost, "/login", map[string]string{"email": "bad@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid password", decode(t, w)["msg"])
}

func TestUpdateProfileUsesCaller(t *testing.T) {
	var got auth.Identity
	svc := &fakeAuthService{
		profileFn: func(ctx context.Context, caller auth.Identity, in services.ProfileInput) (*models.User, error) {
			got = caller
			return &models.User{Email: caller.Email, Name: in.Name}, nil
		},
	}
	ctrl := controllers.NewAuthController(svc)
	r := newRouter()
	r.PUT("/profile", as(auth.Identity{UserID: "u1", Email: "jane@example.com"}), ctrl.UpdateProfile)
	r.PUT("/anonymous", ctrl.UpdateProfile)

	w := performJSON(r, http.MethodPut, "/profile", map[string]string{"name": "Janet"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "Janet", decode(t, w)["updatedUser"].(map[string]any)["name"])

	w = performJSON(r, http.MethodPut, "/anonymous", map[string]string{"name": "Janet"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersAndPing(t *testing.T) {
	svc := &fakeAuthService{
		usersFn: func(ctx context.Context) ([]models.User, error) {
			return []models.User{{Email: "a@example.com", Password: "hash"}}, nil
		},
	}
	ctrl := controllers.NewAuthController(svc)
	r := newRouter()
	r.GET("/users", ctrl.ListUsers)
	r.GET("/ping", ctrl.Ping)

	w := performJSON(r, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")

	w = performJSON(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, true, decode(t, w)["ok"])
}
