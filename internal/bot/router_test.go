package bot

import (
	"GreenPay/internal/adapters/eventbus"
	"GreenPay/internal/adapters/telegram"
	"GreenPay/internal/core/ports"
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockBotClient struct {
	mock.Mock
}

var _ ports.BotClientPort = (*MockBotClient)(nil)

func (m *MockBotClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}
func (m *MockBotClient) SendPhoto(ctx context.Context, params ports.SendPhotoParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}
func (m *MockBotClient) EditMessageCaption(ctx context.Context, params ports.EditMessageCaptionParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) SetMenuCommands(ctx context.Context, chatID int64, isReviewer bool) error {
	args := m.Called(ctx, chatID, isReviewer)
	return args.Error(0)
}

type MockCommandHandler struct {
	mock.Mock
}

func (m *MockCommandHandler) Command() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

type MockCallbackHandler struct {
	mock.Mock
}

func (m *MockCallbackHandler) Prefix() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

type MockMessageHandler struct {
	mock.Mock
}

func (m *MockMessageHandler) Name() string { return "mock_message" }
func (m *MockMessageHandler) CanHandle(update *ports.BotUpdate) bool {
	return update.WebAppData != nil
}
func (m *MockMessageHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// --- Fixtures ---

func textUpdate(text string, entities ...tgbotapi.MessageEntity) telegram.Update {
	return telegram.Update{Update: tgbotapi.Update{
		UpdateID: 123,
		Message: &tgbotapi.Message{
			MessageID: 456,
			From:      &tgbotapi.User{ID: 789, FirstName: "Ali", LastName: "Valiyev"},
			Chat:      &tgbotapi.Chat{ID: 1000},
			Text:      text,
			Entities:  entities,
		},
	}}
}

func callbackUpdate(data string) telegram.Update {
	return telegram.Update{Update: tgbotapi.Update{
		UpdateID: 124,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb_id_1",
			From: &tgbotapi.User{ID: 999, FirstName: "Reviewer"},
			Message: &tgbotapi.Message{
				MessageID: 456,
				Chat:      &tgbotapi.Chat{ID: 999},
				Caption:   "🌳 Yangi daraxt",
			},
			Data: data,
		},
	}}
}

// --- Tests ---

func TestRouter_HandleUpdate_Command(t *testing.T) {
	// 1. Setup
	ctx := context.Background()
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)

	startHandler := new(MockCommandHandler)
	startHandler.On("Command").Return("start")
	startHandler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.UserID == 789 && u.ChatID == 1000 && u.UserFullName == "Ali Valiyev"
	})).Return(nil).Once()

	helpHandler := new(MockCommandHandler)
	helpHandler.On("Command").Return("help")

	// 2. Register handlers
	router.RegisterCommandHandler(startHandler)
	router.RegisterCommandHandler(helpHandler)

	// 3. Run
	router.HandleUpdate(ctx, textUpdate("/start", tgbotapi.MessageEntity{Type: "bot_command", Offset: 0, Length: 6}))

	// 4. Assert
	startHandler.AssertExpectations(t)
	helpHandler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	mockBotClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestRouter_HandleUpdate_Callback(t *testing.T) {
	// 1. Setup
	ctx := context.Background()
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)

	approve := new(MockCallbackHandler)
	approve.On("Prefix").Return("approve:")
	approve.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.CallbackData != nil && *u.CallbackData == "approve:42" &&
			u.CallbackQueryID == "cb_id_1" &&
			u.MessageID == 456 &&
			u.MessageCaption == "🌳 Yangi daraxt"
	})).Return(nil).Once()

	reject := new(MockCallbackHandler)
	reject.On("Prefix").Return("reject:")

	router.RegisterCallbackHandler(approve)
	router.RegisterCallbackHandler(reject)

	// 2. Run
	router.HandleUpdate(ctx, callbackUpdate("approve:42"))

	// 3. Assert
	approve.AssertExpectations(t)
	reject.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestRouter_HandleUpdate_UnknownCallbackIsAnswered(t *testing.T) {
	ctx := context.Background()
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)

	mockBotClient.On("AnswerCallbackQuery", mock.Anything, ports.AnswerCallbackParams{CallbackQueryID: "cb_id_1"}).
		Return(nil).Once()

	router.HandleUpdate(ctx, callbackUpdate("policy_accept"))

	mockBotClient.AssertExpectations(t)
}

func TestRouter_HandleUpdate_WebAppData(t *testing.T) {
	// 1. Setup
	ctx := context.Background()
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)

	messageHandler := new(MockMessageHandler)
	router.RegisterMessageHandler(messageHandler)

	update := textUpdate("")
	update.WebAppData = &telegram.WebAppData{Data: `{"tree":"Eman"}`, ButtonText: "🌱 Daraxt ekish"}

	messageHandler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.WebAppData != nil && *u.WebAppData == `{"tree":"Eman"}`
	})).Return(nil).Once()

	// 2. Run
	router.HandleUpdate(ctx, update)

	// 3. Assert
	messageHandler.AssertExpectations(t)
	mockBotClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestRouter_HandleUpdate_UnhandledText(t *testing.T) {
	// 1. Setup
	ctx := context.Background()
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)
	router.RegisterMessageHandler(new(MockMessageHandler))

	// 2. Expect the start hint
	mockBotClient.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return p.ChatID == 1000 && p.Text == textStartHint
	})).Return(0, nil).Once()

	// 3. Run
	router.HandleUpdate(ctx, textUpdate("hello world"))

	// 4. Assert
	mockBotClient.AssertExpectations(t)
}

func TestRouter_HandleUpdate_Unsupported(t *testing.T) {
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)

	router.HandleUpdate(context.Background(), telegram.Update{Update: tgbotapi.Update{UpdateID: 1}})

	mockBotClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	mockBotClient.AssertNotCalled(t, "AnswerCallbackQuery", mock.Anything, mock.Anything)
}

func TestRouter_SubscribeRoutesBusEvents(t *testing.T) {
	// 1. Setup
	nopLogger := zerolog.Nop()
	mockBotClient := new(MockBotClient)
	router := NewRouter(mockBotClient, &nopLogger)
	bus := eventbus.NewInMemoryEventBus(2, &nopLogger)
	router.Subscribe(bus)

	startHandler := new(MockCommandHandler)
	startHandler.On("Command").Return("start")
	startHandler.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()
	router.RegisterCommandHandler(startHandler)

	// 2. Run
	update := textUpdate("/start", tgbotapi.MessageEntity{Type: "bot_command", Offset: 0, Length: 6})
	require.NoError(t, bus.Publish(context.Background(), telegram.TopicMessage, update))
	bus.Wait()

	// 3. Assert
	startHandler.AssertExpectations(t)
}

func TestRouter_HandleEventRejectsForeignPayload(t *testing.T) {
	nopLogger := zerolog.Nop()
	router := NewRouter(new(MockBotClient), &nopLogger)

	err := router.handleEvent(context.Background(), ports.Event{Topic: telegram.TopicMessage, Data: "nope"})
	assert.Error(t, err)
}

func TestRegisterAllHandlers(t *testing.T) {
	// Registries are package globals; restore them afterwards.
	savedCommands, savedCallbacks, savedMessages := commandRegistry, callbackRegistry, messageRegistry
	t.Cleanup(func() {
		commandRegistry, callbackRegistry, messageRegistry = savedCommands, savedCallbacks, savedMessages
	})
	commandRegistry, callbackRegistry, messageRegistry = nil, nil, nil

	nopLogger := zerolog.Nop()
	client := new(MockBotClient)
	deps := &Dependencies{Client: client, ReviewerID: 999}

	cmd := new(MockCommandHandler)
	cmd.On("Command").Return("start")
	cb := new(MockCallbackHandler)
	cb.On("Prefix").Return("approve:")
	msg := new(MockMessageHandler)

	var seen *Dependencies
	RegisterCommand(func(d *Dependencies, _ *zerolog.Logger) ports.CommandHandler { seen = d; return cmd })
	RegisterCallback(func(*Dependencies, *zerolog.Logger) ports.CallbackHandler { return cb })
	RegisterMessage(func(*Dependencies, *zerolog.Logger) ports.MessageHandler { return msg })

	router := NewRouter(client, &nopLogger)
	RegisterAllHandlers(router, deps, &nopLogger)

	assert.Same(t, deps, seen)
	assert.Contains(t, router.commandHandlers, "start")
	assert.Contains(t, router.callbackHandlers, "approve:")
	assert.Len(t, router.messageHandlers, 1)
}
