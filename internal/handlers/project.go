package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type ProjectSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	TodoCount   int64     `json:"todo_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newProjectSummary(project models.Project, todoCount int64) ProjectSummary {
	return ProjectSummary{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
		TodoCount:   todoCount,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	var body CreateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	project, err := services.CreateProject(db.DB, userID, body.Name, body.Description, body.Color)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.Success("Project created successfully", gin.H{
		"project": newProjectSummary(*project, 0),
	}))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	projects, err := services.ListProjects(db.DB, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	summaries := make([]ProjectSummary, 0, len(projects))

	for _, project := range projects {
		summaries = append(summaries, newProjectSummary(project.Project, project.TodoCount))
	}

	ctx.JSON(http.StatusOK, types.Success("Projects retrieved successfully", gin.H{
		"projects": summaries,
	}))
}

func GetProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	project, err := services.GetProject(db.DB, userID, uint(projectID))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Project retrieved successfully", gin.H{
		"project": newProjectSummary(project.Project, project.TodoCount),
	}))
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	var body UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	if _, err := services.UpdateProject(db.DB, userID, uint(projectID), services.UpdateProjectInput{
		Name:        body.Name,
		Description: body.Description,
		Color:       body.Color,
	}); err != nil {
		respondError(ctx, err)
		return
	}

	project, err := services.GetProject(db.DB, userID, uint(projectID))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Project updated successfully", gin.H{
		"project": newProjectSummary(project.Project, project.TodoCount),
	}))
}

func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	if err := services.DeleteProject(db.DB, userID, uint(projectID)); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Project deleted successfully", nil))
}
