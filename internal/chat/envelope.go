package chat

import (
	"encoding/json"
	"strings"

	"money-copilot/internal/domain"
)

// structuredEnvelope refleja el sobre que el backend incrusta como string
// JSON dentro del campo content de una respuesta de chat.
type structuredEnvelope struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
}

// DecodeStructuredContent es el único punto donde se maneja la doble
// codificación JSON-en-string del contrato de chat. Si content decodifica
// como {success:true, type, data} devuelve el kind y el payload; cualquier
// otra cosa (texto plano, JSON sin sobre, JSON roto) devuelve ok=false y
// el contenido debe tratarse como texto, nunca como error.
func DecodeStructuredContent(content string) (domain.MessageKind, json.RawMessage, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return "", nil, false
	}
	var env structuredEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return "", nil, false
	}
	if !env.Success || env.Type == "" {
		return "", nil, false
	}
	return domain.MessageKind(env.Type), env.Data, true
}
