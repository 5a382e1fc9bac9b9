package slackbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/MikeSquared-Agency/scrumbot/internal/checkin"
	"github.com/MikeSquared-Agency/scrumbot/internal/standup"
	"github.com/MikeSquared-Agency/scrumbot/internal/store"
)

func (b *Bot) handleCheckIn(ctx context.Context, cmd slack.SlashCommand) {
	draft, err := b.service.PrepareCopy(ctx, cmd.ChannelID, cmd.UserID)
	if errors.Is(err, standup.ErrGoalsRequired) {
		b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			"❌ 월간 목표를 먼저 설정해주세요.\n\n목표를 설정하려면 `"+CommandGoals+"` 명령어를 사용해주세요.")
		return
	}
	if err != nil {
		b.notifyError(ctx, cmd.ChannelID, cmd.UserID, CommandCheckIn, err)
		return
	}

	b.drafts.put(cmd.ChannelID, cmd.UserID, draft)

	summary := goalsSummary(displayName(cmd), draft.Profile)
	b.poster.EphemeralBlocks(ctx, cmd.ChannelID, cmd.UserID, summary,
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, summary, false, false), nil, nil),
		slack.NewActionBlock("checkin_actions",
			slack.NewButtonBlockElement(actionStartCheckIn, cmd.ChannelID, plain("✍️ 인증 작성 시작")).
				WithStyle(slack.StylePrimary),
		),
	)
}

// handleStartCheckIn opens the check-in form from the draft prepared by
// /checkin. The draft is rebuilt only when it expired or the bot restarted.
func (b *Bot) handleStartCheckIn(ctx context.Context, callback slack.InteractionCallback) {
	userID := callback.User.ID
	channelID := callback.Channel.ID

	draft, ok := b.drafts.take(channelID, userID)
	if !ok {
		var err error
		draft, err = b.service.PrepareCopy(ctx, channelID, userID)
		if err != nil {
			b.notifyError(ctx, channelID, userID, actionStartCheckIn, err)
			return
		}
	}

	if _, err := b.api.OpenViewContext(ctx, callback.TriggerID, checkInModal(draft.Yesterday, draft.Today)); err != nil {
		b.logger.Error("failed to open check-in modal", "user_id", userID, "error", err)
		b.poster.Ephemeral(ctx, channelID, userID, "❌ 모달을 열 수 없습니다.")
	}
}

func (b *Bot) handleEdit(ctx context.Context, cmd slack.SlashCommand) {
	draft, err := b.service.PrepareEdit(ctx, cmd.ChannelID, cmd.UserID)
	if errors.Is(err, checkin.ErrNotFound) {
		b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID, "❌ 수정할 인증 메시지를 찾을 수 없습니다.")
		return
	}
	if err != nil {
		b.notifyError(ctx, cmd.ChannelID, cmd.UserID, CommandEdit, err)
		return
	}

	if _, err := b.api.OpenViewContext(ctx, cmd.TriggerID, editModal(draft.MessageID, draft.Sections)); err != nil {
		b.logger.Error("failed to open edit modal", "user_id", cmd.UserID, "error", err)
		b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID, "❌ 모달을 열 수 없습니다.")
	}
}

func (b *Bot) handleProfile(ctx context.Context, cmd slack.SlashCommand) {
	p, err := b.service.Profile(ctx, cmd.UserID)
	if errors.Is(err, standup.ErrNoProfile) {
		b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID,
			"🥲 유저 프로필을 찾을 수 없습니다. `"+CommandGoals+"` 명령어로 목표를 설정해주세요.")
		return
	}
	if err != nil {
		b.notifyError(ctx, cmd.ChannelID, cmd.UserID, CommandProfile, err)
		return
	}

	b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID, formatProfile(p))
}

func (b *Bot) handleGoals(ctx context.Context, cmd slack.SlashCommand) {
	p, err := b.service.Profile(ctx, cmd.UserID)
	if err != nil && !errors.Is(err, standup.ErrNoProfile) {
		b.notifyError(ctx, cmd.ChannelID, cmd.UserID, CommandGoals, err)
		return
	}

	if _, err := b.api.OpenViewContext(ctx, cmd.TriggerID, goalsModal(cmd.ChannelID, p)); err != nil {
		b.logger.Error("failed to open goals modal", "user_id", cmd.UserID, "error", err)
		b.poster.Ephemeral(ctx, cmd.ChannelID, cmd.UserID, "❌ 모달을 열 수 없습니다.")
	}
}

func (b *Bot) submitCheckIn(ctx context.Context, callback slack.InteractionCallback) {
	userID := callback.User.ID
	channelID := b.service.ChannelID()

	if _, err := b.service.SubmitCheckIn(ctx, userID, sectionsFromState(callback.View.State)); err != nil {
		b.notifyError(ctx, channelID, userID, callbackCheckIn, err)
		return
	}
	b.poster.Ephemeral(ctx, channelID, userID, "✅ 인증이 등록되었습니다!")
}

func (b *Bot) submitEdit(ctx context.Context, callback slack.InteractionCallback) {
	userID := callback.User.ID
	channelID := b.service.ChannelID()
	messageID := callback.View.PrivateMetadata

	if err := b.service.SubmitEdit(ctx, userID, messageID, sectionsFromState(callback.View.State)); err != nil {
		b.notifyError(ctx, channelID, userID, callbackEdit, err)
		return
	}
	b.poster.Ephemeral(ctx, channelID, userID, "✅ 인증이 수정되었습니다!")
}

func (b *Bot) submitGoals(ctx context.Context, callback slack.InteractionCallback) {
	userID := callback.User.ID
	channelID := callback.View.PrivateMetadata

	if _, err := b.service.SaveProfile(ctx, profileFromState(userID, callback.View.State)); err != nil {
		b.notifyError(ctx, channelID, userID, callbackGoals, err)
		return
	}
	b.poster.Ephemeral(ctx, channelID, userID, "✅ 목표가 저장되었습니다!")
}

func displayName(cmd slack.SlashCommand) string {
	if cmd.UserName != "" {
		return cmd.UserName
	}
	return checkin.Mention(cmd.UserID)
}

func orNone(s string) string {
	if s == "" {
		return standup.NoneText
	}
	return s
}

func goalsSummary(name string, p store.Profile) string {
	return fmt.Sprintf("🎯  %s님의 목표\n\n"+
		"📅  월간 목표\n%s\n\n"+
		"📅  주간 목표\n%s\n\n"+
		"위 목표를 참고하여 인증을 작성해주세요",
		name, orNone(p.MonthlyGoal), orNone(p.WeeklyGoal))
}

func formatProfile(p store.Profile) string {
	return fmt.Sprintf("👤 프로필\n"+
		"🎯 월간 목표: %s\n"+
		"🎯 주간 목표: %s\n"+
		"🎯 루틴: %s",
		orNone(p.MonthlyGoal), orNone(p.WeeklyGoal), orNone(p.Routine))
}

func isUpstream(err error) bool {
	return errors.Is(err, checkin.ErrUpstream)
}
