package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"moschee-backend/internal/assistant"
)

const assistantPersona = `Du bist die virtuelle Assistenz der 'Erfurter Moschee' (Internationales Islamisches Kulturzentrum Erfurtermoschee e. V.).

Tonfall: höflich, kenntnisreich, friedlich und einladend. Sprache: Deutsch.

Kontext:
- Die Nutzer besuchen die Webseite der Moschee in Erfurt.
- Es finden täglich fünf Gebete statt. Das Freitagsgebet (Jumu'ah) beginnt meist um 13:15 oder 13:30 Uhr; verweise für den genauen Termin auf den Plan.
- Die Gemeinde bietet Koranunterricht, Gemeinschaftsabende und Moscheeführungen für Nicht-Muslime an.
- Spenden für den Erhalt der Moschee sind willkommen.

Richtlinien:
- Bei Fragen nach Gebetszeiten: nenne keine erfundenen Uhrzeiten, sondern verweise auf die auf der Webseite angezeigten Zeiten für Erfurt (Fajr, Dhuhr, Asr, Maghrib, Ischa).
- Bei Fragen zum Islam: kurze, friedliche und genaue Zusammenfassungen.
- Antworte hilfreich und knapp, in weniger als drei Sätzen, außer es werden Details gewünscht.`

var errGeminiNotConfigured = errors.New("Gemini API key is not configured")

// GeminiService starts assistant conversations on Gemini. It satisfies
// assistant.Backend.
type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	logger   *slog.Logger
	rateChan chan struct{} // Token bucket shared by all conversations
}

var _ assistant.Backend = (*GeminiService)(nil)

// NewGeminiService creates the Gemini client. With an empty apiKey no client
// is created and Configured reports false.
func NewGeminiService(apiKey, modelName string, concurrentReqs int, logger *slog.Logger) (*GeminiService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	s := &GeminiService{logger: logger, rateChan: rateChan}
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY not set; assistant replies with the unavailable notice")
		return s, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.SetTopP(0.95)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistantPersona)},
	}

	s.client = client
	s.model = model
	return s, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *GeminiService) Configured() bool {
	return s.model != nil
}

// StartConversation opens a chat whose history Gemini sees on every turn.
func (s *GeminiService) StartConversation(ctx context.Context) (assistant.Conversation, error) {
	if !s.Configured() {
		return nil, errGeminiNotConfigured
	}
	return &geminiConversation{service: s, chat: s.model.StartChat()}, nil
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

type geminiConversation struct {
	service *GeminiService
	chat    *genai.ChatSession
}

func (c *geminiConversation) SendMessage(ctx context.Context, text string) (string, error) {
	ctx, span := otel.Tracer("moschee-backend/gemini").Start(ctx, "gemini.SendMessage", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("assistant.history_len", len(c.chat.History)))

	if err := c.service.acquireRate(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate slot")
		return "", err
	}
	defer c.service.releaseRate()

	resp, err := c.chat.SendMessage(ctx, genai.Text(text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			c.service.logger.Warn("Gemini candidate stopped early", "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
