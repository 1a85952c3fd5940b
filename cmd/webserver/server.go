package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"quizverify"

	"github.com/gorilla/sessions"
)

const (
	sessionName  = "reviewer-session"
	recentKey    = "recent_audits"
	maxRecent    = 20
	maxBodyBytes = 2 << 20
)

// Server is the reviewer API over the engine and the store
type Server struct {
	db       *quizverify.DB
	engine   *quizverify.Engine
	pipeline *quizverify.Pipeline
	store    sessions.Store
}

// NewServer creates a server; the pipeline re-verifies stored quizzes
func NewServer(db *quizverify.DB, engine *quizverify.Engine, store sessions.Store) *Server {
	return &Server{
		db:       db,
		engine:   engine,
		pipeline: quizverify.NewPipeline(nil, engine, db),
		store:    store,
	}
}

// Routes returns the HTTP handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/quizzes", s.handleQuizzes)
	mux.HandleFunc("/quiz/", s.handleQuiz)
	mux.HandleFunc("/audits", s.handleAudits)
	mux.HandleFunc("/recent", s.handleRecent)
	return mux
}

type verifyRequest struct {
	Content   string                       `json:"content"`
	Records   []quizverify.ReferenceRecord `json:"records,omitempty"`
	SubjectID string                       `json:"subject_id,omitempty"`
	Unit      int                          `json:"unit,omitempty"`
	From      int                          `json:"from,omitempty"`
	To        int                          `json:"to,omitempty"`
	Save      bool                         `json:"save,omitempty"`
}

type verifyResponse struct {
	Summary quizverify.VerificationSummary `json:"summary"`
	Audit   *quizverify.AuditRecord        `json:"audit,omitempty"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	records := req.Records
	if len(records) == 0 && req.Unit != 0 {
		var err error
		records, err = s.db.GetReferenceRecords(req.Unit, req.From, req.To)
		if err != nil {
			log.Printf("Failed to load corpus: %v", err)
			http.Error(w, "Failed to load corpus", http.StatusInternalServerError)
			return
		}
	}

	resp := verifyResponse{Summary: s.engine.VerifyAndCorrect(req.Content, records)}
	if req.Save {
		audit := quizverify.BuildAuditLog(req.SubjectID, resp.Summary)
		if req.Unit != 0 {
			audit.Context = &quizverify.VerificationContext{
				SubjectID:  req.SubjectID,
				UnitNumber: req.Unit,
				RangeLabel: quizverify.GenerationRequest{UnitNumber: req.Unit, FromOrdinal: req.From, ToOrdinal: req.To}.RangeLabel(),
			}
		}
		if err := s.db.SaveAuditRecord(audit); err != nil {
			log.Printf("Failed to save audit record: %v", err)
			http.Error(w, "Failed to save audit record", http.StatusInternalServerError)
			return
		}
		s.rememberAudit(w, r, audit.ID)
		resp.Audit = &audit
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuizzes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	quizzes, err := s.db.ListQuizzes(queryLimit(r, 50))
	if err != nil {
		log.Printf("Failed to list quizzes: %v", err)
		http.Error(w, "Failed to list quizzes", http.StatusInternalServerError)
		return
	}
	if quizzes == nil {
		quizzes = []quizverify.DBQuiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/quiz/"), "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	quizID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		quiz, err := s.db.GetQuiz(quizID)
		if err != nil {
			s.quizError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, quiz)

	case len(parts) == 2 && parts[1] == "verify" && r.Method == http.MethodPost:
		result, err := s.pipeline.VerifyStoredQuiz(r.Context(), quizID)
		if err != nil {
			s.quizError(w, r, err)
			return
		}
		s.rememberAudit(w, r, result.Audit.ID)
		writeJSON(w, http.StatusOK, result)

	case len(parts) <= 2:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) quizError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, quizverify.ErrQuizNotFound) {
		http.NotFound(w, r)
		return
	}
	log.Printf("Quiz request %s failed: %v", r.URL.Path, err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func (s *Server) handleAudits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	subject := r.URL.Query().Get("subject")
	records, err := s.db.GetAuditRecords(subject, queryLimit(r, 50))
	if err != nil {
		log.Printf("Failed to get audit records: %v", err)
		http.Error(w, "Failed to get audit records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []quizverify.AuditRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleRecent lists the audit IDs this reviewer produced in the current session
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	recent, _ := session.Values[recentKey].([]string)
	if recent == nil {
		recent = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audit_ids": recent})
}

func (s *Server) rememberAudit(w http.ResponseWriter, r *http.Request, auditID string) {
	session, _ := s.store.Get(r, sessionName)
	recent, _ := session.Values[recentKey].([]string)
	recent = append([]string{auditID}, recent...)
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}
	session.Values[recentKey] = recent
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
}

func queryLimit(r *http.Request, def int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
