package slack

import (
	"fmt"

	slackapi "github.com/slack-go/slack"

	"kudos/events"
)

// buildHomeView assembles the app home tab: the user's point totals and a
// button that opens their transaction history
func buildHomeView(totalPoints, remainingPoints int) slackapi.HomeTabViewRequest {
	header := slackapi.NewHeaderBlock(
		slackapi.NewTextBlockObject(slackapi.PlainTextType, "Kudos", false, false),
	)

	summary := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Total points received:* %d\n*Points left to give today:* %d",
				totalPoints, remainingPoints),
			false, false),
		nil, nil,
	)

	historyButton := slackapi.NewActionBlock(
		"home_actions",
		slackapi.NewButtonBlockElement(
			events.ActionViewHistory,
			"",
			slackapi.NewTextBlockObject(slackapi.PlainTextType, "View history", false, false),
		),
	)

	return slackapi.HomeTabViewRequest{
		Type: slackapi.VTHomeTab,
		Blocks: slackapi.Blocks{
			BlockSet: []slackapi.Block{
				header,
				summary,
				slackapi.NewDividerBlock(),
				historyButton,
			},
		},
	}
}
