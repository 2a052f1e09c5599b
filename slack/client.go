// Package slack adapts the workspace platform API to the interfaces the
// core services consume: profile lookups, channel joins, and delivery of
// outbound notifications.
package slack

import (
	"context"
	"fmt"
	"sync"

	slackapi "github.com/slack-go/slack"

	"kudos/models"
	"kudos/service"
)

// Client wraps per-workspace API clients keyed by team ID. Tokens come
// from the workspace credential store; clients are cached after first use.
type Client struct {
	workspaces service.WorkspaceRepository

	mu      sync.Mutex
	clients map[string]*slackapi.Client
}

// NewClient creates a Slack adapter backed by the workspace credential store
func NewClient(workspaces service.WorkspaceRepository) *Client {
	return &Client{
		workspaces: workspaces,
		clients:    make(map[string]*slackapi.Client),
	}
}

// apiFor returns the API client for a team, creating it from the stored
// credential on first use
func (c *Client) apiFor(ctx context.Context, teamID string) (*slackapi.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if api, ok := c.clients[teamID]; ok {
		return api, nil
	}

	workspace, err := c.workspaces.GetByTeamID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace credential: %w", err)
	}
	if workspace == nil || workspace.AccessToken == "" {
		return nil, fmt.Errorf("team %s: %w", teamID, service.ErrCredentialMissing)
	}

	api := slackapi.New(workspace.AccessToken)
	c.clients[teamID] = api
	return api, nil
}

// FetchProfile retrieves a user's profile from the workspace directory
func (c *Client) FetchProfile(ctx context.Context, teamID, userID string) (*models.Profile, error) {
	api, err := c.apiFor(ctx, teamID)
	if err != nil {
		return nil, err
	}

	user, err := api.GetUserInfoContext(ctx, userID)
	if err != nil {
		if err.Error() == "user_not_found" {
			return nil, fmt.Errorf("user %s: %w", userID, service.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user info for %s: %w", userID, err)
	}

	return &models.Profile{
		TeamID:      teamID,
		UserName:    user.Name,
		RealName:    user.RealName,
		DisplayName: user.Profile.DisplayName,
		Email:       user.Profile.Email,
	}, nil
}

// JoinAllChannels joins every public channel in the workspace, paging
// through the channel list. Individual join failures are collected but do
// not stop the pass.
func (c *Client) JoinAllChannels(ctx context.Context, teamID string) error {
	api, err := c.apiFor(ctx, teamID)
	if err != nil {
		return err
	}

	var joinErrs []error
	cursor := ""
	for {
		channels, nextCursor, err := api.GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           200,
			Cursor:          cursor,
			Types:           []string{"public_channel"},
		})
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}

		for _, channel := range channels {
			if channel.IsMember {
				continue
			}
			if _, _, _, err := api.JoinConversationContext(ctx, channel.ID); err != nil {
				joinErrs = append(joinErrs, fmt.Errorf("channel %s: %w", channel.ID, err))
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	if len(joinErrs) > 0 {
		return fmt.Errorf("failed to join %d channels, first error: %w", len(joinErrs), joinErrs[0])
	}
	return nil
}

// SendDM opens a direct message conversation with the user and posts text
func (c *Client) SendDM(ctx context.Context, teamID, userID, text string) error {
	api, err := c.apiFor(ctx, teamID)
	if err != nil {
		return err
	}

	channel, _, _, err := api.OpenConversationContext(ctx, &slackapi.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return fmt.Errorf("failed to open conversation with %s: %w", userID, err)
	}

	_, _, err = api.PostMessageContext(ctx, channel.ID, slackapi.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", userID, err)
	}
	return nil
}

// PublishHomeView renders the user's app home tab
func (c *Client) PublishHomeView(ctx context.Context, teamID, userID string, totalPoints, remainingPoints int) error {
	api, err := c.apiFor(ctx, teamID)
	if err != nil {
		return err
	}

	view := buildHomeView(totalPoints, remainingPoints)
	if _, err := api.PublishViewContext(ctx, slackapi.PublishViewContextRequest{UserID: userID, View: view}); err != nil {
		return fmt.Errorf("failed to publish home view for %s: %w", userID, err)
	}
	return nil
}
