package sender

import (
	"authbot/internal/core/domain"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	args := m.Called(ctx, params)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockBot) SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

func TestTelegram_Notify(t *testing.T) {
	longText := strings.Repeat("x", TelegramMessageLimit+10)

	tests := []struct {
		name      string
		text      string
		wantCalls int
		setupMock func(mb *MockBot)
		wantErr   bool
	}{
		{
			name:      "single message",
			text:      "hello",
			wantCalls: 1,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
					return params.Text == "hello" && params.ChatID == int64(1001)
				})).
					Return(&models.Message{ID: 123}, nil).
					Once()
			},
		},
		{
			name:      "message chunked in two",
			text:      longText,
			wantCalls: 2,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.MatchedBy(func(params *bot.SendMessageParams) bool {
					return len(params.Text) <= TelegramMessageLimit
				})).
					Return(&models.Message{ID: 456}, nil).
					Twice()
			},
		},
		{
			name:      "send fails on first",
			text:      "fail",
			wantCalls: 1,
			setupMock: func(mb *MockBot) {
				mb.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("fail")).Once()
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mb := new(MockBot)
			sender := NewTelegram(mb)

			tc.setupMock(mb)
			err := sender.Notify(t.Context(), domain.Identity(1001), tc.text)

			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			mb.AssertNumberOfCalls(t, "SendMessage", tc.wantCalls)
			mb.AssertExpectations(t)
		})
	}
}

func TestTelegram_SetCommands(t *testing.T) {
	tests := []struct {
		name      string
		commands  []CommandDescription
		retErr    error
		wantCall  bool
		wantErr   bool
		wantNames []string
	}{
		{
			name: "publishes described commands",
			commands: []CommandDescription{
				{Command: "/authorize", Description: "grant access"},
				{Command: "/hidden"},
			},
			wantCall:  true,
			wantNames: []string{"authorize"},
		},
		{
			name:     "nothing to publish",
			commands: []CommandDescription{{Command: "/hidden"}},
		},
		{
			name:     "api failure",
			commands: []CommandDescription{{Command: "/authorize", Description: "grant access"}},
			retErr:   errors.New("fail"),
			wantCall: true,
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mb := new(MockBot)
			sender := NewTelegram(mb)

			if tc.wantCall {
				mb.On("SetMyCommands", mock.Anything, mock.MatchedBy(func(params *bot.SetMyCommandsParams) bool {
					if tc.wantNames == nil {
						return true
					}
					var names []string
					for _, c := range params.Commands {
						names = append(names, c.Command)
					}
					return assert.ObjectsAreEqual(tc.wantNames, names)
				})).Return(tc.retErr == nil, tc.retErr).Once()
			}

			err := sender.SetCommands(t.Context(), tc.commands)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if tc.wantCall {
				mb.AssertExpectations(t)
			} else {
				mb.AssertNotCalled(t, "SetMyCommands", mock.Anything, mock.Anything)
			}
		})
	}
}

func Test_chunkText(t *testing.T) {
	assert.Equal(t, []string{"abc"}, chunkText("abc", 5))
	assert.Equal(t, []string{"ab", "cd", "e"}, chunkText("abcde", 2))
	assert.Equal(t, []string{"äö", "ü"}, chunkText("äöü", 2))
}
