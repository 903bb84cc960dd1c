package chat

import (
	"strconv"
	"time"

	"money-copilot/internal/domain"
)

// MessageLog es la secuencia ordenada y solo-crecimiento de turnos de una
// conversación. La única excepción al solo-crecimiento son los placeholders
// transitorios, que se quitan por id cuando llega la respuesta real.
//
// El log es de escritor único: solo la transición activa del flujo lo muta
// (ver Controller), así que no lleva lock propio.
type MessageLog struct {
	msgs []domain.Message
	next int64
}

func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append agrega un mensaje preservando orden de llegada. Si el mensaje no
// trae id, o su id colisiona con uno existente, recibe uno del contador
// interno: dos mensajes nunca comparten id dentro de un log.
func (l *MessageLog) Append(msg domain.Message) domain.Message {
	if msg.ID == "" || l.has(msg.ID) {
		msg.ID = l.nextID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	l.msgs = append(l.msgs, msg)
	return msg
}

// Replace sustituye en su posición el mensaje con el id dado.
func (l *MessageLog) Replace(id string, msg domain.Message) bool {
	for i := range l.msgs {
		if l.msgs[i].ID == id {
			msg.ID = id
			if msg.CreatedAt.IsZero() {
				msg.CreatedAt = l.msgs[i].CreatedAt
			}
			l.msgs[i] = msg
			return true
		}
	}
	return false
}

// RemoveByID quita el mensaje con el id dado; soporta el patrón de
// placeholder de carga.
func (l *MessageLog) RemoveByID(id string) bool {
	for i := range l.msgs {
		if l.msgs[i].ID == id {
			l.msgs = append(l.msgs[:i], l.msgs[i+1:]...)
			return true
		}
	}
	return false
}

// All devuelve una copia de la secuencia en orden de llegada.
func (l *MessageLog) All() []domain.Message {
	out := make([]domain.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *MessageLog) Len() int {
	return len(l.msgs)
}

func (l *MessageLog) nextID() string {
	l.next++
	return "m-" + strconv.FormatInt(l.next, 10)
}

func (l *MessageLog) has(id string) bool {
	for i := range l.msgs {
		if l.msgs[i].ID == id {
			return true
		}
	}
	return false
}
