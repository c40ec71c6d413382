package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"github.com/visionarieshub/portal-api/internal/logging"
)

// AIService wraps the OpenAI client behind a circuit breaker so a degraded
// upstream fails fast instead of holding request goroutines for the full
// timeout window.
type AIService struct {
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
}

// AITaskDraft is a task candidate produced from free text or a Trello card.
type AITaskDraft struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours float64    `json:"estimated_hours"`
	TrelloCardID   string     `json:"trello_card_id,omitempty"`
}

// AIEstimate is a revised hour estimate for one feature.
type AIEstimate struct {
	FeatureID      string  `json:"feature_id"`
	EstimatedHours float64 `json:"estimated_hours"`
}

func NewAIService(apiKey string) *AIService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenAI",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &AIService{
		client:  openai.NewClient(apiKey),
		breaker: breaker,
	}
}

// GenerateTasksFromTranscript extracts task drafts from a meeting transcript.
func (s *AIService) GenerateTasksFromTranscript(ctx context.Context, transcript string) ([]AITaskDraft, error) {
	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`Eres un asistente de extracción de tareas. Analiza la siguiente transcripción de una reunión y extrae tareas concretas para el equipo.

Fecha y hora actual: %s

Transcripción:
%s

Devuelve únicamente un arreglo JSON con este formato:
[
  {
    "title": "Título corto de la tarea",
    "description": "Descripción detallada",
    "category": "Una de: Propuestas, Startups, Evolution, Pathway, Desarrollo, QA, Portal Admin, Aura, Redes Sociales, Conferencias, Inversión, Pagos, Otra",
    "priority": "high, medium o low",
    "due_date": "Fecha límite en ISO8601 o null si no se menciona",
    "estimated_hours": 0
  }
]

Notas:
- Si no hay tareas devuelve []
- Convierte expresiones relativas ("mañana", "la próxima semana") a fechas concretas
- Devuelve solo el JSON, sin explicaciones`, currentTime, transcript)

	return s.completeTaskDrafts(ctx, prompt)
}

// GenerateTasksFromTrelloCards maps pending Trello cards to task drafts,
// preserving each card id so imports can be deduplicated.
func (s *AIService) GenerateTasksFromTrelloCards(ctx context.Context, cards []TrelloCard) ([]AITaskDraft, error) {
	payload, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cards: %w", err)
	}

	prompt := fmt.Sprintf(`Eres un asistente que convierte tarjetas de Trello en tareas internas del equipo.

Tarjetas (JSON):
%s

Devuelve únicamente un arreglo JSON:
[
  {
    "title": "Título de la tarea (a partir del nombre de la tarjeta)",
    "description": "Descripción a partir de la tarjeta",
    "category": "Una de: Propuestas, Startups, Evolution, Pathway, Desarrollo, QA, Portal Admin, Aura, Redes Sociales, Conferencias, Inversión, Pagos, Otra",
    "priority": "high, medium o low",
    "due_date": "Fecha límite ISO8601 o null",
    "estimated_hours": 0,
    "trello_card_id": "id original de la tarjeta"
  }
]

Conserva siempre el trello_card_id original. Devuelve solo el JSON.`, string(payload))

	return s.completeTaskDrafts(ctx, prompt)
}

// ReEstimateFeatures asks for revised hour estimates for the given features.
func (s *AIService) ReEstimateFeatures(ctx context.Context, features []ReEstimateInput) ([]AIEstimate, error) {
	payload, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}

	prompt := fmt.Sprintf(`Eres un estimador de esfuerzo de desarrollo de software. Revisa las siguientes funcionalidades y propone horas estimadas realistas para cada una.

Funcionalidades (JSON):
%s

Devuelve únicamente un arreglo JSON:
[
  { "feature_id": "id", "estimated_hours": 0 }
]

Incluye todas las funcionalidades recibidas. Devuelve solo el JSON.`, string(payload))

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var estimates []AIEstimate
	if err := json.Unmarshal([]byte(content), &estimates); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return estimates, nil
}

// ReEstimateInput is the feature summary sent for re-estimation.
type ReEstimateInput struct {
	FeatureID      string  `json:"feature_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	EstimatedHours float64 `json:"estimated_hours"`
}

func (s *AIService) completeTaskDrafts(ctx context.Context, prompt string) ([]AITaskDraft, error) {
	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var drafts []AITaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return drafts, nil
}

func (s *AIService) complete(ctx context.Context, prompt string) (string, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.client.CreateChatCompletion(
			ctx,
			openai.ChatCompletionRequest{
				Model: openai.GPT4o,
				Messages: []openai.ChatCompletionMessage{
					{
						Role:    openai.ChatMessageRoleUser,
						Content: prompt,
					},
				},
				Temperature: 0.3,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from OpenAI")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(result.(string))
	// Models occasionally wrap the payload in a fenced code block
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content), nil
}
