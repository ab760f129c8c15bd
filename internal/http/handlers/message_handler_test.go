package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kmarinos/go-anonbox-backend/internal/domain"
	"github.com/kmarinos/go-anonbox-backend/internal/services"
)

// ---------- test plumbing ----------

const testRecipient = "550e8400-e29b-41d4-a716-446655440000"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.Profile{}, &domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, id, username string) {
	t.Helper()
	p := domain.Profile{ID: id, Username: username, DisplayName: username}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func newTestHandlers(db *gorm.DB) *Handlers {
	return New(
		&services.MessageService{DB: db},
		&services.ProfileService{DB: db},
	)
}

func newSendRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := newTestHandlers(db)
	r.POST("/api/send-message", h.SendMessage)
	return r
}

func postSend(t *testing.T, r *gin.Engine, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r.ServeHTTP(w, req)
	return w
}

func sendErrorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e SendMessageError
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("invalid error JSON: %v (%s)", err, w.Body.String())
	}
	return e.Error
}

// ---------- tests ----------

func TestSendMessage_RejectsNonJSONContentType(t *testing.T) {
	r := newSendRouter(t, newTestDB(t))

	w := postSend(t, r, "text/plain", `{"recipientId":"x","content":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := sendErrorOf(t, w); got != "Content-Type must be application/json" {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestSendMessage_BodyParsing(t *testing.T) {
	r := newSendRouter(t, newTestDB(t))

	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "Empty request body"},
		{"malformed JSON", "{nope", "Invalid JSON body"},
		{"missing fields", "{}", "Missing required fields"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postSend(t, r, "application/json", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := sendErrorOf(t, w); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSendMessage_ValidationErrors(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, testRecipient, "jane_doe")
	r := newSendRouter(t, db)

	longContent := strings.Repeat("x", 1001)
	cases := []struct {
		name    string
		payload map[string]string
		want    string
	}{
		{"missing recipient", map[string]string{"content": "hi"}, "Recipient ID is required"},
		{"malformed recipient", map[string]string{"recipientId": "nope", "content": "hi"}, "Invalid recipient ID format"},
		{"empty content", map[string]string{"recipientId": testRecipient, "content": "   \t  "}, "Message cannot be empty"},
		{"too long", map[string]string{"recipientId": testRecipient, "content": longContent}, "Message is too long (max 1000 characters)"},
		{"suspicious escapes", map[string]string{"recipientId": testRecipient, "content": `payload \x41`}, "Message contains invalid characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			w := postSend(t, r, "application/json", string(body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
			}
			if got := sendErrorOf(t, w); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSendMessage_Success(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, testRecipient, "jane_doe")
	r := newSendRouter(t, db)

	body, _ := json.Marshal(map[string]string{
		"recipientId": testRecipient,
		"content":     "  Hello!  ",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp SendMessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid success JSON: %v", err)
	}
	if resp.Message != "Message sent successfully" || !resp.Success {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Data == nil || resp.Data.Content != "Hello!" {
		t.Fatalf("expected sanitized content persisted, got %+v", resp.Data)
	}
	if resp.Data.SenderIP != "203.0.113.5" {
		t.Fatalf("expected forwarded-for attribution, got %q", resp.Data.SenderIP)
	}
	if resp.Data.SenderLocation != "GB" {
		t.Fatalf("expected locale attribution, got %q", resp.Data.SenderLocation)
	}

	var count int64
	if err := db.Model(&domain.Message{}).Where("recipient_id = ?", testRecipient).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored message, got %d", count)
	}
}

func TestSendMessage_UnknownRecipientIsGeneric500(t *testing.T) {
	// Well-formed UUID but no such profile: the foreign key rejects the
	// insert and the sender only sees the generic failure phrase.
	db := newTestDB(t)
	r := newSendRouter(t, db)

	body, _ := json.Marshal(map[string]string{
		"recipientId": testRecipient,
		"content":     "hi",
	})
	w := postSend(t, r, "application/json", string(body))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d (%s)", w.Code, w.Body.String())
	}
	if got := sendErrorOf(t, w); got != "Failed to send message" {
		t.Fatalf("expected generic failure, got %q", got)
	}
}

func TestSendMessage_AcceptsJSONSuffixMediaType(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, testRecipient, "jane_doe")
	r := newSendRouter(t, db)

	body, _ := json.Marshal(map[string]string{"recipientId": testRecipient, "content": "hi"})
	w := postSend(t, r, "application/vnd.api+json", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for +json media type, got %d (%s)", w.Code, w.Body.String())
	}
}
