package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"kudos/events"
	"kudos/models"
)

// eventRouter implements the EventRouter interface
type eventRouter struct {
	triggerPhrase string
	ledger        LedgerService
	history       HistoryService
	directory     DirectoryService
	workspaces    WorkspaceRepository
	joiner        ChannelJoiner
}

// NewEventRouter creates a new event router
func NewEventRouter(
	triggerPhrase string,
	ledger LedgerService,
	history HistoryService,
	directory DirectoryService,
	workspaces WorkspaceRepository,
	joiner ChannelJoiner,
) EventRouter {
	return &eventRouter{
		triggerPhrase: triggerPhrase,
		ledger:        ledger,
		history:       history,
		directory:     directory,
		workspaces:    workspaces,
		joiner:        joiner,
	}
}

// HandleEvent classifies one inbound event and drives the ledger,
// history and directory as needed. Redelivered events short-circuit to
// a no-op before any side effect so the transport's at-least-once
// delivery never double-applies a transfer. Unknown event kinds are
// success, never an error.
func (r *eventRouter) HandleEvent(ctx context.Context, ev events.InboundEvent) ([]events.OutboundNotification, error) {
	logger := log.WithFields(log.Fields{
		"kind":   ev.Kind,
		"teamID": ev.TeamID,
		"userID": ev.UserID,
	})

	if ev.Redelivery {
		logger.Info("Redelivered event, skipping")
		return nil, nil
	}

	workspace, err := r.workspaces.GetByTeamID(ctx, ev.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up workspace %s: %w: %w", ev.TeamID, ErrStorage, err)
	}
	if workspace == nil || workspace.AccessToken == "" {
		return nil, fmt.Errorf("team %s: %w", ev.TeamID, ErrCredentialMissing)
	}

	// Interactive actions arrive on their own delivery channel upstream
	// but fold into the same normalized shape, so they are routed ahead
	// of the kind switch
	if ev.ActionID == events.ActionViewHistory {
		return r.handleViewHistory(ctx, ev, logger)
	}

	switch ev.Kind {
	case events.KindHomeOpened:
		return r.handleHomeOpened(ctx, ev, logger)

	case events.KindMessage:
		return r.handleMessage(ctx, ev, logger)

	case events.KindAppInstalled:
		if err := r.joiner.JoinAllChannels(ctx, ev.TeamID); err != nil {
			logger.WithError(err).Error("Failed to join workspace channels")
		}
		return nil, nil

	case events.KindTeamJoin, events.KindUserProfileChange:
		if _, err := r.directory.RefreshProfile(ctx, ev.TeamID, ev.UserID); err != nil {
			logger.WithError(err).Warn("Failed to refresh user profile")
		}
		return nil, nil

	default:
		logger.Info("Unrecognized event kind, ignoring")
		return nil, nil
	}
}

func (r *eventRouter) handleHomeOpened(ctx context.Context, ev events.InboundEvent, logger *log.Entry) ([]events.OutboundNotification, error) {
	user, err := r.directory.EnsureProfile(ctx, ev.TeamID, ev.UserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load user for home view")
		return nil, nil
	}

	return []events.OutboundNotification{{
		Kind:            events.NotificationHomeView,
		TargetUser:      ev.UserID,
		TotalPoints:     user.TotalPoints,
		RemainingPoints: DailyQuota - user.DailyPointsGiven,
	}}, nil
}

func (r *eventRouter) handleMessage(ctx context.Context, ev events.InboundEvent, logger *log.Entry) ([]events.OutboundNotification, error) {
	mentions, residual := ExtractMentions(ev.Text)
	if len(mentions) == 0 {
		return nil, nil
	}
	if !strings.Contains(residual, r.triggerPhrase) {
		return nil, nil
	}

	// Backfill profiles for everyone involved before touching the
	// ledger; a failed backfill is not fatal to the transfer
	sender, err := r.directory.EnsureProfile(ctx, ev.TeamID, ev.UserID)
	if err != nil {
		logger.WithError(err).Warn("Failed to backfill sender profile")
	}
	for _, userID := range mentions {
		if userID == ev.UserID {
			continue
		}
		if _, err := r.directory.EnsureProfile(ctx, ev.TeamID, userID); err != nil {
			logger.WithError(err).WithField("mention", userID).Warn("Failed to backfill recipient profile")
		}
	}

	result, err := r.ledger.AddPoints(ctx, ev.UserID, mentions, residual)
	if err != nil {
		logger.WithError(err).Info("Point transfer rejected")
		return []events.OutboundNotification{{
			Kind:       events.NotificationDM,
			TargetUser: ev.UserID,
			Text:       transferFailureText(result, err),
		}}, nil
	}

	senderName := ev.UserID
	if sender != nil {
		senderName = sender.DisplayName
	}

	recipients := excludeSender(ev.UserID, mentions)
	notifications := make([]events.OutboundNotification, 0, len(recipients)+1)
	for _, recipientID := range recipients {
		notifications = append(notifications, events.OutboundNotification{
			Kind:       events.NotificationDM,
			TargetUser: recipientID,
			Text:       receivedPointText(ctx, r.directory, ev.TeamID, recipientID, senderName),
		})
	}
	notifications = append(notifications, events.OutboundNotification{
		Kind:       events.NotificationDM,
		TargetUser: ev.UserID,
		Text: fmt.Sprintf("✅ You gave a point to %d %s.\n*Points left to give today:* %d",
			len(recipients), pluralUsers(len(recipients)), DailyQuota-result.DailyPointsGiven),
	})

	logger.WithFields(log.Fields{
		"transactionID": result.TransactionID,
		"recipients":    len(recipients),
	}).Info("Points transferred")

	return notifications, nil
}

func (r *eventRouter) handleViewHistory(ctx context.Context, ev events.InboundEvent, logger *log.Entry) ([]events.OutboundNotification, error) {
	views, err := r.history.GetHistory(ctx, ev.TeamID, ev.UserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load point history")
		return []events.OutboundNotification{{
			Kind:       events.NotificationDM,
			TargetUser: ev.UserID,
			Text:       "⚠️ Your point history couldn't be loaded right now. Please try again later.",
		}}, nil
	}

	return []events.OutboundNotification{{
		Kind:       events.NotificationDM,
		TargetUser: ev.UserID,
		Text:       formatHistory(views),
	}}, nil
}

// transferFailureText converts a ledger failure into the sender-facing
// message. Every error kind the ledger can report is recovered here.
func transferFailureText(result *models.LedgerResult, err error) string {
	remaining := DailyQuota - result.DailyPointsGiven

	switch {
	case errors.Is(err, ErrSelfMention):
		return "⚠️ You can't give points to yourself."
	case errors.Is(err, ErrQuotaExceeded):
		return fmt.Sprintf("⚠️ That would go over today's limit.\n*Points left to give today:* %d", remaining)
	case errors.Is(err, ErrConflict):
		return "⚠️ Things got busy and your points couldn't be recorded. Please try again."
	default:
		return "⚠️ Something went wrong while recording your points. Please try again later."
	}
}

func receivedPointText(ctx context.Context, directory DirectoryService, teamID, recipientID, senderName string) string {
	recipient, err := directory.EnsureProfile(ctx, teamID, recipientID)
	if err != nil {
		// Total unavailable; the point itself is already committed
		return fmt.Sprintf("🎉 You received a point!\n*From:* %s", senderName)
	}
	return fmt.Sprintf("🎉 You received a point!\n*From:* %s\n*Your total:* %d points", senderName, recipient.TotalPoints)
}

func formatHistory(views []*models.TransactionView) string {
	if len(views) == 0 {
		return "📊 You have no point history yet."
	}

	var b strings.Builder
	b.WriteString("📊 *Point history*\n")
	for _, view := range views {
		message := view.Message
		if message == "" {
			message = "(no message)"
		}
		verb := "received"
		preposition := "from"
		if view.Direction == models.DirectionSent {
			verb = "gave"
			preposition = "to"
		}
		fmt.Fprintf(&b, "• %s\n  You %s %d %s %s %s\n  > %s\n",
			view.Timestamp.Format("2006-01-02 15:04"),
			verb, view.Points, pluralPoints(view.Points), preposition,
			view.CounterpartyName, message)
	}
	return b.String()
}

func pluralUsers(n int) string {
	if n == 1 {
		return "user"
	}
	return "users"
}

func pluralPoints(n int) string {
	if n == 1 {
		return "point"
	}
	return "points"
}
