// Package slackbot connects the check-in service to Slack over Socket Mode.
package slackbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/MikeSquared-Agency/scrumbot/internal/standup"
)

// Slash commands the app registers.
const (
	CommandCheckIn = "/checkin"
	CommandEdit    = "/checkin-edit"
	CommandProfile = "/profile"
	CommandGoals   = "/goals"
)

const actionStartCheckIn = "start_checkin"

// Config holds the Slack credentials.
type Config struct {
	BotToken string // xoxb-...
	AppToken string // xapp-..., required for Socket Mode
	Debug    bool
}

// NewClient validates cfg and returns a Web API client usable for Socket Mode.
func NewClient(cfg Config, opts ...slack.Option) (*slack.Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("app token is required for Socket Mode")
	}
	if !strings.HasPrefix(cfg.AppToken, "xapp-") {
		return nil, fmt.Errorf("app token must start with xapp-")
	}

	opts = append([]slack.Option{
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	}, opts...)
	return slack.New(cfg.BotToken, opts...), nil
}

// Bot dispatches slash commands and interactions to the check-in service.
type Bot struct {
	api          *slack.Client
	poster       *Poster
	service      *standup.Service
	drafts       *draftCache
	adminChannel string
	logger       *slog.Logger

	connected atomic.Bool
	announced atomic.Bool
}

func New(api *slack.Client, service *standup.Service, adminChannel string, logger *slog.Logger) *Bot {
	return &Bot{
		api:          api,
		poster:       NewPoster(api, logger),
		service:      service,
		drafts:       newDraftCache(),
		adminChannel: adminChannel,
		logger:       logger,
	}
}

// Connected reports whether the Socket Mode connection is up.
func (b *Bot) Connected() bool { return b.connected.Load() }

// Run connects over Socket Mode and handles events until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	auth, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	b.logger.Info("slack auth ok", "user", auth.User, "team", auth.Team, "bot_id", auth.BotID)

	sm := socketmode.New(b.api)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-sm.Events:
				b.handleEvent(ctx, sm, evt, auth.User)
			}
		}
	}()

	return sm.RunContext(ctx)
}

func (b *Bot) handleEvent(ctx context.Context, sm *socketmode.Client, evt socketmode.Event, botName string) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.logger.Info("slack connecting")

	case socketmode.EventTypeConnected:
		b.connected.Store(true)
		b.logger.Info("slack connected")
		if b.adminChannel != "" && !b.announced.Swap(true) {
			go b.announce(ctx, botName)
		}

	case socketmode.EventTypeConnectionError, socketmode.EventTypeDisconnect:
		b.connected.Store(false)
		b.logger.Warn("slack connection lost", "type", evt.Type)

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		sm.Ack(*evt.Request)
		go b.handleSlashCommand(ctx, cmd)

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		sm.Ack(*evt.Request)
		go b.handleInteraction(ctx, callback)
	}
}

func (b *Bot) announce(ctx context.Context, botName string) {
	text := fmt.Sprintf("🤖 봇이 준비되었습니다! %s 봇 준비 완료", botName)
	if _, err := b.poster.PostMessage(ctx, b.adminChannel, text); err != nil {
		b.logger.Warn("failed to post ready notice", "channel", b.adminChannel, "error", err)
	}
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	b.logger.Info("slash command", "command", cmd.Command, "user_id", cmd.UserID, "channel", cmd.ChannelID)

	switch cmd.Command {
	case CommandCheckIn:
		b.handleCheckIn(ctx, cmd)
	case CommandEdit:
		b.handleEdit(ctx, cmd)
	case CommandProfile:
		b.handleProfile(ctx, cmd)
	case CommandGoals:
		b.handleGoals(ctx, cmd)
	default:
		b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID, fmt.Sprintf("알 수 없는 명령어입니다: %s", cmd.Command))
	}
}

func (b *Bot) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	switch callback.Type {
	case slack.InteractionTypeViewSubmission:
		b.handleViewSubmission(ctx, callback)
	case slack.InteractionTypeBlockActions:
		for _, action := range callback.ActionCallback.BlockActions {
			if action.ActionID == actionStartCheckIn {
				b.handleStartCheckIn(ctx, callback)
			}
		}
	}
}

func (b *Bot) handleViewSubmission(ctx context.Context, callback slack.InteractionCallback) {
	switch callback.View.CallbackID {
	case callbackCheckIn:
		b.submitCheckIn(ctx, callback)
	case callbackEdit:
		b.submitEdit(ctx, callback)
	case callbackGoals:
		b.submitGoals(ctx, callback)
	default:
		b.logger.Warn("unknown view submission", "callback_id", callback.View.CallbackID)
	}
}

// notifyError turns a service error into the ephemeral notice the member sees.
func (b *Bot) notifyError(ctx context.Context, channelID, userID, action string, err error) {
	var text string
	switch {
	case errors.Is(err, standup.ErrWrongChannel):
		text = "이 채널에서는 사용할 수 없는 명령어입니다."
	case errors.Is(err, standup.ErrPersist):
		text = "⚠️ 데이터베이스 저장 중 오류가 발생했습니다."
	case isUpstream(err):
		text = "❌ 인증 채널을 찾을 수 없거나 접근할 수 없습니다."
	default:
		text = "❌ 명령어 실행 중 오류가 발생했습니다."
	}
	b.logger.Error("command failed", "action", action, "user_id", userID, "error", err)
	b.poster.Ephemeral(ctx, channelID, userID, text)
}
