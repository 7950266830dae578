package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agribot/internal/dataset"
	"agribot/internal/model"
	"agribot/internal/utils"

	"github.com/google/uuid"
)

// ChatEventCallback is called for streaming chat events
type ChatEventCallback func(event string, data any) error

// ChatService orchestrates one conversation turn: extract entities, look up
// figures, answer or ask a clarifying question. Each turn is handled
// independently; entities from earlier turns are not remembered.
type ChatService struct {
	extractor  *Extractor
	advisor    *Advisor
	greeting   string
	maxHistory int

	mu       sync.RWMutex
	sessions map[string][]model.Message
}

// NewChatService creates a new chat service
func NewChatService(extractor *Extractor, advisor *Advisor, greeting string, maxHistory int) *ChatService {
	return &ChatService{
		extractor:  extractor,
		advisor:    advisor,
		greeting:   greeting,
		maxHistory: maxHistory,
		sessions:   make(map[string][]model.Message),
	}
}

// Respond handles one user turn and returns the assistant's reply
func (s *ChatService) Respond(req *model.ChatRequest) *model.ChatResponse {
	startTime := time.Now()

	sessionID := s.ensureSession(req.SessionID)
	s.appendMessage(sessionID, model.RoleUser, req.Message)

	reply, entities, report := s.answer(req.Message)
	s.appendMessage(sessionID, model.RoleAssistant, reply)

	return &model.ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Entities:  entities,
		Report:    report,
		Took:      time.Since(startTime).Milliseconds(),
	}
}

// RespondStream handles one user turn with streaming progress events
func (s *ChatService) RespondStream(req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	startTime := time.Now()

	sessionID := s.ensureSession(req.SessionID)
	s.appendMessage(sessionID, model.RoleUser, req.Message)

	if err := callback("extracting", map[string]any{"status": "Analyzing..."}); err != nil {
		return nil, err
	}

	entities := s.extractor.Extract(req.Message)
	if err := callback("entities", entities); err != nil {
		return nil, err
	}

	reply, report := s.respondToEntities(entities)
	s.appendMessage(sessionID, model.RoleAssistant, reply)

	return &model.ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
		Entities:  entities,
		Report:    report,
		Took:      time.Since(startTime).Milliseconds(),
	}, nil
}

// History returns the conversation for a session
func (s *ChatService) History(sessionID string) (*model.SessionHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]model.Message, len(messages))
	copy(out, messages)

	return &model.SessionHistory{SessionID: sessionID, Messages: out}, true
}

// answer runs extraction plus the per-turn state machine
func (s *ChatService) answer(text string) (string, *model.ExtractedEntities, *model.Report) {
	entities := s.extractor.Extract(text)
	reply, report := s.respondToEntities(entities)
	return reply, entities, report
}

// respondToEntities decides the reply from which entities are known this
// turn: all three → report; otherwise a clarification naming what is
// missing. Branch order follows the extraction outcome states.
func (s *ChatService) respondToEntities(entities *model.ExtractedEntities) (string, *model.Report) {
	// Extraction returns an empty result when the tables are not loaded;
	// re-check the load to tell "no data" apart from "nothing matched".
	if err := s.loadError(); err != nil {
		return loadFailureReply(err), nil
	}

	district := entities.District
	state := entities.State
	crop := entities.Crop

	switch {
	case entities.Complete():
		report, err := s.advisor.Recommend(district, state, crop)
		if err != nil {
			return recommendFailureReply(err), nil
		}
		return report.Text, report

	case district != "" && crop != "" && state == "":
		if len(entities.CandidateStates) > 0 {
			return fmt.Sprintf("I found **%s**, which exists in multiple states: %s. Which state do you mean?",
				utils.TitleCase(district), stateList(entities.CandidateStates)), nil
		}
		return fmt.Sprintf("I found **%s**, but I need to know the **State** as well. (e.g., Ludhiana, Punjab)",
			utils.TitleCase(district)), nil

	case district == "" && crop == "":
		return "I couldn't identify the location or crop. Please use the format: **'Crop in District'** (e.g., *Rice in Ludhiana*).", nil

	case district == "":
		return "Which **District** are you asking about?", nil

	default: // district known, crop missing
		if len(entities.CandidateStates) > 0 {
			return fmt.Sprintf("I found **%s**, which exists in multiple states: %s. Which **Crop** are you planning to grow, and in which state?",
				utils.TitleCase(district), stateList(entities.CandidateStates)), nil
		}
		return fmt.Sprintf("I found **%s**. Which **Crop** are you planning to grow?", utils.TitleCase(district)), nil
	}
}

// loadError returns the current dataset load failure, if any
func (s *ChatService) loadError() error {
	_, _, err := s.extractor.store.Tables()
	return err
}

// loadFailureReply distinguishes "no file yet" (prompt for data) from
// "file supplied but invalid" (surface the parse error).
func loadFailureReply(err error) string {
	var parseErr *dataset.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("⚠️ Error reading your data: %s. Tip: Ensure your CSV has the header on the 2nd row.", parseErr.Reason)
	}
	return "⚠️ Waiting for data. Please upload the crop requirements and district soil datasets."
}

// recommendFailureReply renders lookup failures as user-facing text
func recommendFailureReply(err error) string {
	var cropErr *CropNotFoundError
	if errors.As(err, &cropErr) {
		return fmt.Sprintf("❌ I couldn't find nutrient requirements for **%s**.", utils.TitleCase(cropErr.Crop))
	}
	var soilErr *SoilDataNotFoundError
	if errors.As(err, &soilErr) {
		return fmt.Sprintf("❌ I couldn't find soil data for **%s** in **%s**.",
			utils.TitleCase(soilErr.District), utils.TitleCase(soilErr.State))
	}
	return loadFailureReply(err)
}

// stateList renders candidate state names for a clarification message
func stateList(states []string) string {
	titled := make([]string, len(states))
	for i, state := range states {
		titled[i] = utils.TitleCase(state)
	}
	return strings.Join(titled, ", ")
}

// ensureSession returns a valid session ID, creating a new session seeded
// with the greeting when none was supplied or the ID is unknown.
func (s *ChatService) ensureSession(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if _, ok := s.sessions[sessionID]; ok {
			return sessionID
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s.sessions[sessionID] = []model.Message{{
		Role:      model.RoleAssistant,
		Content:   s.greeting,
		CreatedAt: time.Now(),
	}}

	return sessionID
}

// appendMessage appends to a session history, dropping the oldest messages
// past the retention cap.
func (s *ChatService) appendMessage(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := append(s.sessions[sessionID], model.Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	if s.maxHistory > 0 && len(messages) > s.maxHistory {
		messages = messages[len(messages)-s.maxHistory:]
	}
	s.sessions[sessionID] = messages
}
