package services

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

// WhoAmI confirms the integration token by fetching its bot user. The answer
// is cached for the lifetime of the client.
func (c *NotionClient) WhoAmI(ctx context.Context) (*models.User, error) {
	c.muUser.Lock()
	defer c.muUser.Unlock()

	if c.user != nil {
		return c.user, nil
	}

	if c.Config.NotionToken == "" {
		return nil, errors.New("notion token is empty")
	}

	logger.Info().Msg("Verifying Notion integration token...")

	var user models.User
	if err := c.call(ctx, "users_me", "", http.MethodGet, "/users/me", nil, &user); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "token check cancelled")
		}
		return nil, errors.Wrap(err, "verifying notion token")
	}
	if user.ID == "" {
		return nil, errors.New("token check returned no user")
	}

	c.user = &user
	ev := logger.Info().Str("userId", user.ID)
	if user.Bot != nil && user.Bot.WorkspaceName != "" {
		ev = ev.Str("workspace", user.Bot.WorkspaceName)
	}
	ev.Msg("Notion token verified")
	return c.user, nil
}
