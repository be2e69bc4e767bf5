package usecase

import (
	"context"
	"strings"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
	"go-jobmatch-web/pkg/logger"
)

type authUsecase struct {
	gateway domain.AuthGateway
	store   domain.SessionStore
}

func NewAuthUsecase(gateway domain.AuthGateway, store domain.SessionStore) domain.AuthUsecase {
	return &authUsecase{gateway: gateway, store: store}
}

// Login caches the returned credential pair and picks the landing view by role.
func (u *authUsecase) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	result, err := u.gateway.Login(ctx, creds)
	if err != nil {
		return "", err
	}
	if err := u.store.Save(ctx, domain.Session{Token: result.Token, Role: result.UserType}); err != nil {
		return "", apperror.Internal(err)
	}
	logger.Log.InfoContext(ctx, "user logged in", "user_type", result.UserType)
	return result.UserType.LandingPath(), nil
}

// Register creates the account, caches the credential and lands on the home view.
func (u *authUsecase) Register(ctx context.Context, reg domain.Registration) (string, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	if !reg.UserType.Valid() {
		return "", apperror.Validation("Please choose a student or employer account")
	}
	switch reg.UserType {
	case domain.RoleStudent:
		reg.EmployerDetails = nil
	case domain.RoleEmployer:
		reg.StudentDetails = nil
	}

	result, err := u.gateway.Register(ctx, reg)
	if err != nil {
		return "", err
	}
	if err := u.store.Save(ctx, domain.Session{Token: result.Token, Role: result.UserType}); err != nil {
		return "", apperror.Internal(err)
	}
	logger.Log.InfoContext(ctx, "user registered", "user_type", result.UserType)
	return "/", nil
}

func (u *authUsecase) Logout(ctx context.Context) {
	u.store.Clear(ctx)
}

func (u *authUsecase) CurrentUser(ctx context.Context) (*domain.User, error) {
	if !u.store.Load(ctx).Present() {
		return nil, apperror.Unauthorized("Please log in")
	}
	return u.gateway.Me(ctx)
}
