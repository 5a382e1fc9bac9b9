package slackbot

import (
	"github.com/slack-go/slack"

	"github.com/MikeSquared-Agency/scrumbot/internal/checkin"
	"github.com/MikeSquared-Agency/scrumbot/internal/store"
)

// Modal callback IDs.
const (
	callbackCheckIn = "checkin_modal"
	callbackEdit    = "checkin_edit_modal"
	callbackGoals   = "goals_modal"
)

// Block and action IDs of modal inputs. Each input block holds one action
// with the same name plus an "_input" suffix.
const (
	blockYesterday   = "yesterday"
	blockToday       = "today"
	blockComment     = "comment"
	blockMonthlyGoal = "monthly_goal"
	blockWeeklyGoal  = "weekly_goal"
	blockRoutine     = "routine"
)

const commentLabel = checkin.HeadingComment + " (힘든 점, 좋은 일, 기대하는 모습 등)"

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func textArea(blockID, label, initial string, optional bool) *slack.InputBlock {
	el := slack.NewPlainTextInputBlockElement(nil, blockID+"_input")
	el.Multiline = true
	el.InitialValue = initial

	block := slack.NewInputBlock(blockID, plain(label), nil, el)
	block.Optional = optional
	return block
}

func checkInBlocks(sec checkin.Sections) slack.Blocks {
	return slack.Blocks{
		BlockSet: []slack.Block{
			textArea(blockYesterday, checkin.HeadingYesterday, sec.Yesterday, false),
			textArea(blockToday, checkin.HeadingToday, sec.Today, false),
			textArea(blockComment, commentLabel, sec.Comment, false),
		},
	}
}

// checkInModal is the form for a new check-in, prefilled from a draft.
func checkInModal(yesterday, today string) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: callbackCheckIn,
		Title:      plain("✍️ 인증 내용 작성"),
		Submit:     plain("등록"),
		Close:      plain("취소"),
		Blocks:     checkInBlocks(checkin.Sections{Yesterday: yesterday, Today: today}),
	}
}

// editModal rewrites the check-in posted as messageID.
func editModal(messageID string, sec checkin.Sections) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      callbackEdit,
		Title:           plain("✏️ 인증 내용 수정"),
		Submit:          plain("수정"),
		Close:           plain("취소"),
		PrivateMetadata: messageID,
		Blocks:          checkInBlocks(sec),
	}
}

// goalsModal edits the member's profile. channelID is where the confirmation goes.
func goalsModal(channelID string, p store.Profile) slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      callbackGoals,
		Title:           plain("🎯 목표 설정"),
		Submit:          plain("저장"),
		Close:           plain("취소"),
		PrivateMetadata: channelID,
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				textArea(blockMonthlyGoal, "📅 월간 목표", p.MonthlyGoal, false),
				textArea(blockWeeklyGoal, "📅 주간 목표", p.WeeklyGoal, true),
				textArea(blockRoutine, "🔁 루틴 (오늘 계획에 자동으로 채워집니다)", p.Routine, true),
			},
		},
	}
}

// inputValue reads the submitted value of a textArea block.
func inputValue(state *slack.ViewState, blockID string) string {
	if state == nil {
		return ""
	}
	block, ok := state.Values[blockID]
	if !ok {
		return ""
	}
	return block[blockID+"_input"].Value
}

func sectionsFromState(state *slack.ViewState) checkin.Sections {
	return checkin.Sections{
		Yesterday: inputValue(state, blockYesterday),
		Today:     inputValue(state, blockToday),
		Comment:   inputValue(state, blockComment),
	}
}

func profileFromState(userID string, state *slack.ViewState) store.Profile {
	return store.Profile{
		UserID:      userID,
		MonthlyGoal: inputValue(state, blockMonthlyGoal),
		WeeklyGoal:  inputValue(state, blockWeeklyGoal),
		Routine:     inputValue(state, blockRoutine),
	}
}
