package ollama

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

const maxPromptText = 12000

const systemPrompt = `Eres un analista experto en experiencia de cliente del sector bancario.
Clasifica el sentimiento de comunicaciones de clientes (correos, chats, transcripciones de llamadas).

Responde solo con un objeto JSON con esta forma exacta:
{
  "overallSentiment": "positive" | "neutral" | "negative",
  "emotionScores": {
    "joy": number, "sadness": number, "anger": number,
    "fear": number, "surprise": number, "disgust": number
  },
  "confidence": number,
  "reasoning": string
}

Reglas:
- Cada valor de emotionScores va de 0 a 1 y la suma debe ser aproximadamente 1.0.
- confidence va de 0 a 1.
- Palabras como "problema", "error", "demora", "cobro indebido" o "bloqueo" suelen indicar frustración.
- Agradecimientos y elogios al servicio indican un sentimiento positivo.
- Consultas informativas sin carga emocional son neutrales.
- reasoning es una explicación breve en español.`

func buildClassificationPrompt(req domain.ClassifyRequest) string {
	text := truncateRunes(strings.TrimSpace(req.Text), maxPromptText)

	var b strings.Builder
	b.WriteString("Analiza el siguiente texto de un cliente y determina su sentimiento y emociones.\n\n")
	writeField(&b, "Cliente", req.ClientName)
	writeField(&b, "Canal", req.Channel)
	writeField(&b, "Documento", req.DocumentID)
	b.WriteString("\nTexto a analizar:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n\nDevuelve el análisis completo en el formato JSON indicado.")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
