package remote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/oksasatya/course-admin/internal/domain/entity"
	"github.com/oksasatya/course-admin/internal/domain/repository"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

// SignIn exchanges staff credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, entity.User, error) {
	var out signInResponse
	if err := c.Do(ctx, http.MethodPost, PathUsers+"/login", nil, signInRequest{Email: email, Password: password}, nil, &out); err != nil {
		return "", entity.User{}, err
	}
	if out.Token == "" {
		return "", entity.User{}, errors.New("sign-in response carried no token")
	}
	return out.Token, out.User, nil
}

// Revenue fetches raw payment points; aggregation happens in the analytics service.
func (c *Client) Revenue(ctx context.Context, from, to time.Time) ([]entity.RevenuePoint, error) {
	q := map[string][]string{
		"from": {from.UTC().Format(time.RFC3339)},
		"to":   {to.UTC().Format(time.RFC3339)},
	}
	var out []entity.RevenuePoint
	if err := c.Do(ctx, http.MethodGet, "/analytics/revenue", q, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ repository.AuthGateway   = (*Client)(nil)
	_ repository.RevenueSource = (*Client)(nil)
)
