package components

import (
	"encoding/base64"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
	"github.com/gabriel-vasile/mimetype"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/healthbutler/healthbutler/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
)

// Message represents a message in the chat history.
type Message struct {
	content schema.Schema
	role    MessageRole
	turnID  string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID sets message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// Attachement returns message attachement
func (m Message) Attachement() *schema.Attachement {
	return m.content.Attachement()
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToOpenAI converts the message to an openai ChatCompletionMessage.
// Image URLs become multi-part content; in-memory image buffers are inlined
// as data URLs so the bytes never touch disk.
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	attachement := m.Attachement()
	if attachement == nil || (len(attachement.ImageURLs) == 0 && len(attachement.Images) == 0) {
		dist.Content = schema.Stringify(m.content)
		return
	}
	dist.MultiContent = make([]openai.ChatMessagePart, 0, len(attachement.ImageURLs)+len(attachement.Images)+1)
	dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: schema.Stringify(m.content),
	})
	for _, imageURL := range attachement.ImageURLs {
		dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: imageURL,
			},
		})
	}
	for _, buf := range attachement.Images {
		data, err := buf.Bytes()
		if err != nil {
			continue
		}
		mime := mimetype.Detect(data)
		dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", mime.String(), base64.StdEncoding.EncodeToString(data)),
			},
		})
	}
}

// ToAnthropic converts the message to an anthropic Message.
func (m Message) ToAnthropic(dist *anthropic.Message) {
	dist.Role = anthropic.ChatRole(m.role)
	attachement := m.Attachement()
	if attachement == nil || len(attachement.Images) == 0 {
		dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(schema.Stringify(m.content))}
		return
	}
	dist.Content = make([]anthropic.MessageContent, 0, len(attachement.Images)+1)
	for _, buf := range attachement.Images {
		data, err := buf.Bytes()
		if err != nil {
			continue
		}
		mime := mimetype.Detect(data)
		imgSource := anthropic.MessageContentSource{
			Type:      "base64",
			MediaType: mime.String(),
			Data:      base64.StdEncoding.EncodeToString(data),
		}
		dist.Content = append(dist.Content, anthropic.NewImageMessageContent(imgSource))
	}
	dist.Content = append(dist.Content, anthropic.NewTextMessageContent(schema.Stringify(m.content)))
}

// ToCohere converts the message to a cohere Message.
func (m Message) ToCohere(dist *cohere.Message) {
	switch m.role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = &cohere.ChatMessage{
			Message: schema.Stringify(m.content),
		}
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = &cohere.ChatMessage{
			Message: schema.Stringify(m.content),
		}
	default:
		dist.Role = "USER"
		dist.User = &cohere.ChatMessage{
			Message: schema.Stringify(m.content),
		}
	}
}
