package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ConversationSummary exposes the client-facing uuid as the id; row ids
// never leave the conversation tables.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageSummary struct {
	ID        uint            `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Actions   json.RawMessage `json:"actions,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func newConversationSummary(conversation models.ChatConversation) ConversationSummary {
	return ConversationSummary{
		ID:        conversation.UID,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}

func newMessageSummary(message models.ChatMessage) MessageSummary {
	summary := MessageSummary{
		ID:        message.ID,
		Role:      message.Role,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}

	if len(message.Actions) > 0 {
		summary.Actions = json.RawMessage(message.Actions)
	}

	return summary
}

func newMessageSummaries(messages []models.ChatMessage) []MessageSummary {
	summaries := make([]MessageSummary, 0, len(messages))

	for _, message := range messages {
		summaries = append(summaries, newMessageSummary(message))
	}

	return summaries
}

func CreateConversation(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	var body CreateConversationRequest

	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			respondInvalid(ctx, err)
			return
		}
	}

	conversation, err := services.CreateConversation(db.DB, userID, body.Title)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.Success("Conversation created successfully", gin.H{
		"conversation": newConversationSummary(*conversation),
	}))
}

func ListConversations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	conversations, err := services.ListConversations(db.DB, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	summaries := make([]ConversationSummary, 0, len(conversations))

	for _, conversation := range conversations {
		summaries = append(summaries, newConversationSummary(conversation))
	}

	ctx.JSON(http.StatusOK, types.Success("Conversations retrieved successfully", gin.H{
		"conversations": summaries,
	}))
}

func GetConversation(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	uid, err := utils.GetConversationID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	conversation, err := services.GetConversation(db.DB, userID, uid)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Conversation retrieved successfully", gin.H{
		"conversation": newConversationSummary(*conversation),
		"messages":     newMessageSummaries(conversation.Messages),
	}))
}

func DeleteConversation(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	uid, err := utils.GetConversationID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	if err := services.DeleteConversation(db.DB, userID, uid); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Conversation deleted successfully", nil))
}

func ListMessages(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	uid, err := utils.GetConversationID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	page, pageSize := pageParams(ctx)

	result, err := services.ListMessages(db.DB, userID, uid, page, pageSize)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if messages, ok := result.Items.([]models.ChatMessage); ok {
		result.Items = newMessageSummaries(messages)
	}

	ctx.JSON(http.StatusOK, types.Success("Messages retrieved successfully", result))
}

// PostMessage runs one assistant turn over REST.
func PostMessage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	uid, err := utils.GetConversationID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	var body PostMessageRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	turn, err := services.PostMessage(ctx.Request.Context(), db.DB, AI, Cfg, userID, uid, body.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Message processed successfully", gin.H{
		"conversation":      newConversationSummary(*turn.Conversation),
		"user_message":      newMessageSummary(turn.UserMessage),
		"assistant_message": newMessageSummary(turn.AssistantMessage),
		"reply":             turn.Reply,
		"actions":           turn.Actions,
	}))
}
