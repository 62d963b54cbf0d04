package chatserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/agustogpt/chatstore/pkg/api"
	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
	"github.com/agustogpt/chatstore/pkg/sessionstore"
)

// SaveChatRequest is the request payload for saving a chat session
type SaveChatRequest struct {
	Messages []chatv1.Message `json:"messages"`
	Metadata chatv1.Metadata  `json:"metadata,omitempty"`
}

// LogQueryRequest is the request payload for recording an answered question
type LogQueryRequest struct {
	Query      string                   `json:"query"`
	Response   string                   `json:"response"`
	SearchMode string                   `json:"search_mode"`
	Filters    map[string]interface{}   `json:"filters,omitempty"`
	Sources    []chatv1.SourceReference `json:"sources,omitempty"`
}

type HealthResponse struct {
	PersistenceEnabled bool `json:"persistence_enabled"`
}

type NewChatResponse struct {
	ChatID string `json:"chat_id"`
}

type SaveChatResponse struct {
	Saved bool `json:"saved"`
}

type DeleteChatResponse struct {
	Deleted bool `json:"deleted"`
}

type LogQueryResponse struct {
	Logged bool `json:"logged"`
}

func (s *Server) jsonHealth(w http.ResponseWriter, _ *http.Request) {
	api.RespondWithJSON(http.StatusOK, w, HealthResponse{PersistenceEnabled: s.manager.Enabled()})
}

// requireUser returns the request's user, or writes a 401 and returns "".
func requireUser(w http.ResponseWriter, req *http.Request) string {
	user := getUserForRequest(req)
	if user == "" {
		api.FailureResponse(w, http.StatusUnauthorized, "User authentication required")
		return ""
	}
	if err := sessionstore.ValidateKey("user", user); err != nil {
		api.FailureResponse(w, http.StatusBadRequest, err.Error())
		return ""
	}
	return user
}

// requireChatID returns the chat id path parameter, or writes a 400 and returns "".
func requireChatID(w http.ResponseWriter, req *http.Request) string {
	chatID := mux.Vars(req)["id"]
	if err := sessionstore.ValidateKey("chat id", chatID); err != nil {
		api.FailureResponse(w, http.StatusBadRequest, err.Error())
		return ""
	}
	return chatID
}

// requireEnabled writes a 503 and returns false when persistence is not configured.
func (s *Server) requireEnabled(w http.ResponseWriter) bool {
	if !s.manager.Enabled() {
		api.FailureResponse(w, http.StatusServiceUnavailable, "Chat history is not available")
		return false
	}
	return true
}

// decodeBody decodes a size limited JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, req.Body, MaxConversationSizeBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.FailureResponse(w, http.StatusBadRequest, fmt.Sprintf("Conversation too large (maximum %d bytes)", MaxConversationSizeBytes))
			return false
		}
		log.WithError(err).Error("error parsing request body")
		api.FailureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// jsonNewChat handles POST requests for a fresh chat id. Nothing is stored until the first save.
func (s *Server) jsonNewChat(w http.ResponseWriter, req *http.Request) {
	if requireUser(w, req) == "" {
		return
	}
	api.RespondWithJSON(http.StatusCreated, w, NewChatResponse{ChatID: s.manager.NewChatID()})
}

func (s *Server) jsonListChats(w http.ResponseWriter, req *http.Request) {
	user := requireUser(w, req)
	if user == "" || !s.requireEnabled(w) {
		return
	}

	limit := 0
	if l := req.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 0 {
			api.FailureResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}

	api.RespondWithJSON(http.StatusOK, w, s.manager.ListSessions(req.Context(), user, limit))
}

// jsonSaveChat handles PUT requests replacing the stored transcript of a chat
func (s *Server) jsonSaveChat(w http.ResponseWriter, req *http.Request) {
	user := requireUser(w, req)
	if user == "" {
		return
	}
	chatID := requireChatID(w, req)
	if chatID == "" {
		return
	}

	var request SaveChatRequest
	if !decodeBody(w, req, &request) {
		return
	}

	if !s.manager.SaveSession(req.Context(), chatID, user, request.Messages, request.Metadata) {
		api.RespondWithJSON(http.StatusServiceUnavailable, w, SaveChatResponse{Saved: false})
		return
	}

	log.WithFields(log.Fields{
		"user":   user,
		"chatID": chatID,
	}).Info("chat session saved")
	api.RespondWithJSON(http.StatusOK, w, SaveChatResponse{Saved: true})
}

func (s *Server) jsonGetChat(w http.ResponseWriter, req *http.Request) {
	user := requireUser(w, req)
	if user == "" || !s.requireEnabled(w) {
		return
	}
	chatID := requireChatID(w, req)
	if chatID == "" {
		return
	}

	session, ok := s.manager.LoadSession(req.Context(), chatID, user)
	if !ok {
		api.FailureResponse(w, http.StatusNotFound, "Chat not found")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, session)
}

func (s *Server) jsonDeleteChat(w http.ResponseWriter, req *http.Request) {
	user := requireUser(w, req)
	if user == "" || !s.requireEnabled(w) {
		return
	}
	chatID := requireChatID(w, req)
	if chatID == "" {
		return
	}

	if !s.manager.DeleteSession(req.Context(), chatID, user) {
		api.FailureResponse(w, http.StatusNotFound, "Chat not found")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, DeleteChatResponse{Deleted: true})
}

func (s *Server) jsonLogQuery(w http.ResponseWriter, req *http.Request) {
	user := requireUser(w, req)
	if user == "" {
		return
	}
	chatID := requireChatID(w, req)
	if chatID == "" {
		return
	}

	var request LogQueryRequest
	if !decodeBody(w, req, &request) {
		return
	}
	if request.Query == "" {
		api.FailureResponse(w, http.StatusBadRequest, "Query is required")
		return
	}

	logged := s.manager.LogQuery(req.Context(), sessionstore.QueryLog{
		ChatID:     chatID,
		UserID:     user,
		Query:      request.Query,
		Response:   request.Response,
		SearchMode: request.SearchMode,
		Filters:    request.Filters,
		Sources:    request.Sources,
	})
	if !logged {
		api.RespondWithJSON(http.StatusServiceUnavailable, w, LogQueryResponse{Logged: false})
		return
	}
	api.RespondWithJSON(http.StatusAccepted, w, LogQueryResponse{Logged: true})
}
