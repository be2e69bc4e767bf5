package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go-jobmatch-web/internal/domain"
	"go-jobmatch-web/pkg/apperror"
)

var errMalformedAuth = errors.New("auth response without token or user type")

type authGateway struct {
	client *Client
}

func NewAuthGateway(client *Client) domain.AuthGateway {
	return &authGateway{client: client}
}

func (g *authGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	data, err := g.client.do(ctx, http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return nil, err
	}
	return decodeAuthResult("login", data)
}

func (g *authGateway) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	data, err := g.client.do(ctx, http.MethodPost, "/auth/register", nil, reg)
	if err != nil {
		return nil, err
	}
	return decodeAuthResult("register", data)
}

func (g *authGateway) Me(ctx context.Context) (*domain.User, error) {
	data, err := g.client.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		User *userDTO `json:"user"`
	}
	if err := decode(data, &wrapped); err != nil {
		return nil, decodeError("current user", err)
	}
	if wrapped.User != nil {
		user := wrapped.User.toDomain()
		return &user, nil
	}

	var dto userDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, decodeError("current user", err)
	}
	user := dto.toDomain()
	return &user, nil
}

func decodeAuthResult(op string, data json.RawMessage) (*domain.AuthResult, error) {
	var result struct {
		Token    string      `json:"token"`
		UserType domain.Role `json:"userType"`
		User     *userDTO    `json:"user"`
	}
	if err := decode(data, &result); err != nil {
		return nil, decodeError(op, err)
	}
	role := result.UserType
	if role == "" && result.User != nil {
		role = result.User.toDomain().UserType
	}
	if result.Token == "" || !role.Valid() {
		return nil, apperror.Internal(errMalformedAuth)
	}
	return &domain.AuthResult{Token: result.Token, UserType: role}, nil
}
