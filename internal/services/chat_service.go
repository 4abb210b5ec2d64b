package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/ai"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const (
	chatHistoryWindow    = 20
	chatContextTodoLimit = 25
	defaultConvTitle     = "New conversation"
)

func CreateConversation(database *gorm.DB, userID uint, title string) (*models.ChatConversation, error) {
	title = strings.TrimSpace(title)

	if title == "" {
		title = defaultConvTitle
	}

	conversation := models.ChatConversation{
		UserID: userID,
		UID:    uuid.NewString(),
		Title:  title,
	}

	if err := database.Create(&conversation).Error; err != nil {
		return nil, err
	}

	return &conversation, nil
}

func ListConversations(database *gorm.DB, userID uint) ([]models.ChatConversation, error) {
	var conversations []models.ChatConversation

	if err := database.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, err
	}

	return conversations, nil
}

func getOwnedConversation(database *gorm.DB, userID uint, uid string) (*models.ChatConversation, error) {
	var conversation models.ChatConversation

	if err := database.Where("uid = ? AND user_id = ?", uid, userID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Conversation")
		}

		return nil, err
	}

	return &conversation, nil
}

func GetConversation(database *gorm.DB, userID uint, uid string) (*models.ChatConversation, error) {
	conversation, err := getOwnedConversation(database, userID, uid)

	if err != nil {
		return nil, err
	}

	if err := database.Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").
		Find(&conversation.Messages).Error; err != nil {
		return nil, err
	}

	return conversation, nil
}

func DeleteConversation(database *gorm.DB, userID uint, uid string) error {
	conversation, err := getOwnedConversation(database, userID, uid)

	if err != nil {
		return err
	}

	return database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("conversation_id = ?", conversation.ID).
			Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(conversation).Error
	})
}

func ListMessages(database *gorm.DB, userID uint, uid string, page, pageSize int) (*types.Page, error) {
	conversation, err := getOwnedConversation(database, userID, uid)

	if err != nil {
		return nil, err
	}

	query := database.Model(&models.ChatMessage{}).Where("conversation_id = ?", conversation.ID)

	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize = clampPage(page, pageSize)

	var messages []models.ChatMessage

	if err := query.Order("created_at ASC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	result := types.NewPage(messages, total, page, pageSize)

	return &result, nil
}

// ChatTurn is the result of posting one message: the stored pair plus the
// parsed reply and per-action outcomes.
type ChatTurn struct {
	Conversation     *models.ChatConversation `json:"conversation"`
	UserMessage      models.ChatMessage       `json:"user_message"`
	AssistantMessage models.ChatMessage       `json:"assistant_message"`
	Reply            string                   `json:"reply"`
	Actions          []ai.ChatAction          `json:"actions"`
}

// PostMessage runs one assistant turn: store the user message, call the
// model with recent history and workspace context, execute any actions and
// store the assistant reply with its actions payload.
func PostMessage(ctx context.Context, database *gorm.DB, aiSvc *ai.Service, cfg *config.Config, userID uint, conversationUID, content string) (*ChatTurn, error) {
	content = strings.TrimSpace(content)

	if content == "" {
		return nil, apperrors.Validation("Message content is required")
	}

	conversation, err := getOwnedConversation(database, userID, conversationUID)

	if err != nil {
		return nil, err
	}

	userMessage := models.ChatMessage{
		ConversationID: conversation.ID,
		Role:           types.RoleUser,
		Content:        content,
	}

	if err := database.Create(&userMessage).Error; err != nil {
		return nil, err
	}

	history, err := recentHistory(database, conversation.ID)

	if err != nil {
		return nil, err
	}

	var projects []models.Project

	if err := database.Where("user_id = ?", userID).Find(&projects).Error; err != nil {
		return nil, err
	}

	var todos []models.Todo

	if err := database.Where("user_id = ? AND status <> ?", userID, types.StatusDone).
		Order("updated_at DESC").
		Limit(chatContextTodoLimit).
		Find(&todos).Error; err != nil {
		return nil, err
	}

	reply, err := aiSvc.Chat(ctx, database, userID, projects, todos, history)

	if err != nil {
		return nil, err
	}

	executeActions(database, cfg, userID, reply.Actions)

	assistantMessage := models.ChatMessage{
		ConversationID: conversation.ID,
		Role:           types.RoleAssistant,
		Content:        reply.Reply,
	}

	if len(reply.Actions) > 0 {
		if payload, marshalErr := json.Marshal(reply.Actions); marshalErr == nil {
			assistantMessage.Actions = datatypes.JSON(payload)
		}
	}

	if err := database.Create(&assistantMessage).Error; err != nil {
		return nil, err
	}

	touchConversation(database, conversation, content)

	return &ChatTurn{
		Conversation:     conversation,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Reply:            reply.Reply,
		Actions:          reply.Actions,
	}, nil
}

// recentHistory loads the last messages of the conversation, oldest first,
// as model messages.
func recentHistory(database *gorm.DB, conversationID uint) ([]*schema.Message, error) {
	var messages []models.ChatMessage

	if err := database.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(chatHistoryWindow).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	history := make([]*schema.Message, 0, len(messages))

	for i := len(messages) - 1; i >= 0; i-- {
		message := messages[i]

		switch message.Role {
		case types.RoleAssistant:
			history = append(history, schema.AssistantMessage(message.Content, nil))
		case types.RoleSystem:
			history = append(history, schema.SystemMessage(message.Content))
		default:
			history = append(history, schema.UserMessage(message.Content))
		}
	}

	return history, nil
}

// touchConversation bumps updated_at and titles a fresh conversation after
// its first message.
func touchConversation(database *gorm.DB, conversation *models.ChatConversation, firstContent string) {
	updates := map[string]interface{}{"updated_at": time.Now()}

	if conversation.Title == defaultConvTitle {
		title := firstContent

		if len(title) > 60 {
			title = title[:60]
		}

		updates["title"] = title
		conversation.Title = title
	}

	database.Model(conversation).Updates(updates)
}

// executeActions runs each assistant action independently so one failure
// never aborts the rest of the turn.
func executeActions(database *gorm.DB, cfg *config.Config, userID uint, actions []ai.ChatAction) {
	for i := range actions {
		action := &actions[i]

		if action.ConfirmationRequired {
			action.Status = types.ActionPendingConfirmation
			continue
		}

		if err := executeAction(database, cfg, userID, action); err != nil {
			action.Status = types.ActionFailed
			action.Error = apperrors.As(err).Message
		} else {
			action.Status = types.ActionExecuted
		}
	}
}

// executeAction dispatches a single action through the same service
// functions the REST handlers use. A panic is contained as a failure.
func executeAction(database *gorm.DB, cfg *config.Config, userID uint, action *ai.ChatAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()

	switch action.Type {
	case types.ActionCreateProject:
		project, createErr := CreateProject(database, userID, action.Name, action.Description, action.Color)

		if createErr != nil {
			return createErr
		}

		action.CreatedID = project.ID

	case types.ActionCreateTask:
		input := CreateTodoInput{
			Title:       action.Title,
			Description: action.Description,
			Priority:    action.Priority,
		}

		if action.ProjectID != 0 {
			projectID := action.ProjectID
			input.ProjectID = &projectID
		}

		if action.DueDate != "" {
			if due, parseErr := time.Parse("2006-01-02", action.DueDate); parseErr == nil {
				input.DueDate = &due
			}
		}

		todo, createErr := CreateTodo(database, userID, input, cfg.MaxTodoDepth)

		if createErr != nil {
			return createErr
		}

		action.CreatedID = todo.ID

	case types.ActionCreateSubtasks:
		if action.TodoID == 0 {
			return apperrors.Validation("create_subtasks requires todo_id")
		}

		if len(action.Subtasks) == 0 {
			return apperrors.Validation("create_subtasks requires subtasks")
		}

		parent, getErr := getOwnedTodo(database, userID, action.TodoID)

		if getErr != nil {
			return getErr
		}

		parentID := parent.ID

		for _, suggestion := range action.Subtasks {
			input := CreateTodoInput{
				Title:        suggestion.Title,
				Description:  suggestion.Description,
				Priority:     suggestion.Priority,
				ParentTodoID: &parentID,
				AIGenerated:  true,
			}

			if _, createErr := CreateTodo(database, userID, input, cfg.MaxTodoDepth); createErr != nil {
				return createErr
			}
		}

		action.CreatedID = parent.ID

	default:
		return apperrors.Validation(fmt.Sprintf("Unknown action type %q", action.Type))
	}

	return nil
}
