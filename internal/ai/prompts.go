package ai

import (
	"fmt"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/models"
)

const subtaskSystemPrompt = `You are a task planning assistant. You break a task down into concrete,
actionable subtasks. Respond with JSON only, no prose, in the form:
{"subtasks": [{"title": "...", "description": "...", "priority": 1-5}]}`

const analyzeSystemPrompt = `You are a task planning assistant. You read a document and extract the
actionable work it implies. Respond with JSON only, no prose, in the form:
{"summary": "...", "suggested_tasks": [{"title": "...", "description": "...", "priority": 1-5}]}`

const chatSystemPrompt = `You are a task management assistant. You help the user organize projects
and todos, and you can act on their behalf. Always respond with JSON only:
{"reply": "...", "actions": []}

"reply" is your conversational answer. "actions" may contain zero or more of:
  {"type": "create_project", "name": "...", "description": "...", "color": "..."}
  {"type": "create_task", "title": "...", "description": "...", "priority": 1-5, "due_date": "YYYY-MM-DD", "project_id": N}
  {"type": "create_subtasks", "todo_id": N, "subtasks": [{"title": "...", "description": "...", "priority": 1-5}]}

Add "confirmation_required": true to any action the user has not clearly and
explicitly asked for. Never invent project or todo ids.`

func subtaskPrompt(todo *models.Todo, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Break the following task into at most %d subtasks.\n\n", count)
	fmt.Fprintf(&b, "Task: %s\n", todo.Title)

	if todo.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", todo.Description)
	}

	return b.String()
}

func analyzePrompt(filename, content string) string {
	var b strings.Builder

	b.WriteString("Analyze the following document and suggest tasks.\n\n")

	if filename != "" {
		fmt.Fprintf(&b, "Filename: %s\n\n", filename)
	}

	b.WriteString(content)

	return b.String()
}

// chatContextPrompt summarizes the user's current projects and todos so the
// assistant can reference real ids in its actions.
func chatContextPrompt(projects []models.Project, todos []models.Todo) string {
	var b strings.Builder

	b.WriteString("Current workspace state:\n")

	if len(projects) == 0 {
		b.WriteString("Projects: none\n")
	} else {
		b.WriteString("Projects:\n")
		for _, p := range projects {
			fmt.Fprintf(&b, "  - id=%d name=%q\n", p.ID, p.Name)
		}
	}

	if len(todos) == 0 {
		b.WriteString("Open todos: none\n")
	} else {
		b.WriteString("Open todos:\n")
		for _, t := range todos {
			fmt.Fprintf(&b, "  - id=%d title=%q status=%s priority=%d\n", t.ID, t.Title, t.Status, t.Priority)
		}
	}

	return b.String()
}
