package mockupstream

import (
	"context"

	"bigleague/stats/internal/models"

	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (c *Client) FetchLeague(ctx context.Context, leagueID string) (*models.LeagueInput, error) {
	args := c.Called(ctx, leagueID)

	var res *models.LeagueInput
	if args.Get(0) != nil {
		res = args.Get(0).(*models.LeagueInput)
	}

	return res, args.Error(1)
}

func (c *Client) FetchRosters(ctx context.Context, leagueID string) ([]models.RosterInput, error) {
	args := c.Called(ctx, leagueID)

	var res []models.RosterInput
	if args.Get(0) != nil {
		res = args.Get(0).([]models.RosterInput)
	}

	return res, args.Error(1)
}

func (c *Client) FetchUsers(ctx context.Context, leagueID string) ([]models.UserInput, error) {
	args := c.Called(ctx, leagueID)

	var res []models.UserInput
	if args.Get(0) != nil {
		res = args.Get(0).([]models.UserInput)
	}

	return res, args.Error(1)
}

func (c *Client) FetchPlayers(ctx context.Context) (map[string]models.PlayerInput, error) {
	args := c.Called(ctx)

	var res map[string]models.PlayerInput
	if args.Get(0) != nil {
		res = args.Get(0).(map[string]models.PlayerInput)
	}

	return res, args.Error(1)
}

func (c *Client) FetchState(ctx context.Context) (*models.SeasonStateInput, error) {
	args := c.Called(ctx)

	var res *models.SeasonStateInput
	if args.Get(0) != nil {
		res = args.Get(0).(*models.SeasonStateInput)
	}

	return res, args.Error(1)
}

func (c *Client) FetchMatchups(ctx context.Context, leagueID string, week int) ([]models.MatchupInput, error) {
	args := c.Called(ctx, leagueID, week)

	var res []models.MatchupInput
	if args.Get(0) != nil {
		res = args.Get(0).([]models.MatchupInput)
	}

	return res, args.Error(1)
}
