package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/auth"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminID   uint = 1
	studentID uint = 3
	staffID   uint = 7
)

type routerFixture struct {
	router   *gin.Engine
	services *mockServiceManager
	images   *fakeImageStore
	tokens   *auth.TokenManager
}

func newRouterFixture(t *testing.T, configure ...func(*RouteOptions)) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &routerFixture{
		router:   gin.New(),
		services: newMockServiceManager(),
		images:   &fakeImageStore{},
		tokens:   auth.NewTokenManager("handler-test-secret"),
	}

	opts := RouteOptions{Verifier: f.tokens}
	for _, fn := range configure {
		fn(&opts)
	}

	NewHandlerManager(f.services, f.images, testLogger()).SetupRoutes(f.router, opts)
	return f
}

func (f *routerFixture) token(t *testing.T, userID uint, role models.UserRole) string {
	t.Helper()
	token, err := f.tokens.Issue(userID, role)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"hostel-service"}`, w.Body.String())
}

func TestRoleBoundaries(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)
	student := f.token(t, studentID, models.RoleStudent)
	staff := f.token(t, staffID, models.RoleStaff)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{"no token on my issues", http.MethodGet, "/api/issues/my", "", http.StatusUnauthorized, CodeUnauthorized},
		{"garbage token", http.MethodGet, "/api/auth/me", "not-a-jwt", http.StatusUnauthorized, CodeUnauthorized},
		{"admin cannot list my issues", http.MethodGet, "/api/issues/my", admin, http.StatusForbidden, CodeForbidden},
		{"student cannot list students", http.MethodGet, "/api/students", student, http.StatusForbidden, CodeForbidden},
		{"staff cannot open issues", http.MethodPut, "/api/issues/5/open", staff, http.StatusForbidden, CodeForbidden},
		{"student cannot resolve", http.MethodPut, "/api/issues/5/resolve", student, http.StatusForbidden, CodeForbidden},
		{"student cannot export", http.MethodGet, "/api/issues/export", student, http.StatusForbidden, CodeForbidden},
		{"staff cannot create accounts", http.MethodPost, "/api/admin/create-student", staff, http.StatusForbidden, CodeForbidden},
		{"student cannot announce", http.MethodPost, "/api/announcements", student, http.StatusForbidden, CodeForbidden},
		{"staff cannot file issues", http.MethodPost, "/api/issues", staff, http.StatusForbidden, CodeForbidden},
		{"listing is admin only when not public", http.MethodGet, "/api/issues", "", http.StatusUnauthorized, CodeUnauthorized},
		{"status updates are admin only when not public", http.MethodPut, "/api/issues/5/status", student, http.StatusForbidden, CodeForbidden},
		{"lost and found needs a token", http.MethodGet, "/api/lost-found", "", http.StatusUnauthorized, CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestPublicPolicies(t *testing.T) {
	f := newRouterFixture(t, func(o *RouteOptions) {
		o.PublicIssueListing = true
		o.PublicStatusUpdates = true
	})

	f.services.issue.On("ListAll", mock.Anything, mock.Anything).Return([]*models.Issue{{ID: 1}}, int64(250), nil)
	f.services.issue.On("UpdateStatus", mock.Anything, uint(5), &services.UpdateIssueStatusRequest{Status: models.IssueResolved}, uint(0)).
		Return(&models.Issue{ID: 5, Status: models.IssueResolved}, nil)

	w := f.do(t, http.MethodGet, "/api/issues", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "250", w.Header().Get("X-Total-Count"))

	w = f.do(t, http.MethodPut, "/api/issues/5/status", "", gin.H{"status": "resolved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Issue status updated successfully")
	f.services.issue.AssertExpectations(t)
}

func TestPublicStatusUpdateKeepsActorWhenAuthenticated(t *testing.T) {
	f := newRouterFixture(t, func(o *RouteOptions) { o.PublicStatusUpdates = true })
	admin := f.token(t, adminID, models.RoleAdmin)

	f.services.issue.On("UpdateStatus", mock.Anything, uint(5), mock.Anything, adminID).
		Return(&models.Issue{ID: 5, Status: models.IssueInProgress}, nil)

	w := f.do(t, http.MethodPut, "/api/issues/5/status", admin, gin.H{"status": "in_progress"})
	assert.Equal(t, http.StatusOK, w.Code)
	f.services.issue.AssertExpectations(t)
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", services.ErrIssueNotFound, http.StatusNotFound, CodeNotFound},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"stale write", services.ErrIssueConflict, http.StatusConflict, CodeConflict},
		{"invalid transition", &services.TransitionError{From: models.IssueResolved, To: models.IssueOpen}, http.StatusUnprocessableEntity, CodeInvalidTransition},
		{"validation", services.ValidationErrors{{Field: "status", Message: "bad"}}, http.StatusBadRequest, CodeValidationFailed},
		{"too large", upload.ErrFileTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{"unexpected", assert.AnError, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			admin := f.token(t, adminID, models.RoleAdmin)
			f.services.issue.On("Get", mock.Anything, uint(9), adminID, models.RoleAdmin).Return(nil, tt.err)

			w := f.do(t, http.MethodGet, "/api/issues/9", admin, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestInternalErrorDoesNotLeakDetails(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)
	f.services.issue.On("Stats", mock.Anything).Return(nil, assert.AnError)

	w := f.do(t, http.MethodGet, "/api/issues/stats", admin, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestInvalidIDParam(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)

	for _, path := range []string{"/api/issues/abc", "/api/issues/0", "/api/students/-1"} {
		w := f.do(t, http.MethodGet, path, admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, CodeValidationFailed, decodeError(t, w).Code, path)
	}
	f.services.issue.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	f := newRouterFixture(t)

	f.services.auth.On("Login", mock.Anything, &services.LoginRequest{Email: "alice@example.com", Password: "pw"}).
		Return(&services.LoginResponse{
			Message: "Login Successful",
			Token:   "tok",
			User:    models.UserSummary{ID: studentID, Name: "Alice", Role: models.RoleStudent},
		}, nil)
	f.services.auth.On("Login", mock.Anything, &services.LoginRequest{Email: "alice@example.com", Password: "bad"}).
		Return(nil, services.ErrInvalidCredentials)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Login Successful","token":"tok","user":{"id":3,"name":"Alice","role":"student"}}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid Credentials", decodeError(t, w).Message)
}

func TestCreateStudent(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)

	f.services.auth.On("Register", mock.Anything, mock.MatchedBy(func(r *services.RegisterRequest) bool {
		return r.Email == "bob@example.com" && r.RoomNumber != nil && *r.RoomNumber == "12"
	})).Return(&models.User{ID: 20, Name: "Bob", Role: models.RoleStudent}, nil)

	w := f.do(t, http.MethodPost, "/api/admin/create-student", admin, gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "pw",
		"hostel_name": "H1", "block_name": "A", "room_number": "12",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Student created successfully")

	f.services.auth.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrEmailTaken).Once()
	w = f.do(t, http.MethodPost, "/api/admin/create-student", admin, gin.H{"name": "Dup", "email": "dup@example.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists", decodeError(t, w).Message)
}

func multipartIssue(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile(upload.FieldName, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateIssue_Multipart(t *testing.T) {
	f := newRouterFixture(t)
	student := f.token(t, studentID, models.RoleStudent)

	f.services.issue.On("Create", mock.Anything,
		mock.MatchedBy(func(r *services.CreateIssueRequest) bool {
			return r.Title == "Leaking tap" && r.Category == "plumbing" && r.IsPublic
		}),
		studentID,
		mock.MatchedBy(func(p *string) bool { return p != nil && *p == "uploads/tap.jpg" }),
	).Return(&models.Issue{ID: 42, Title: "Leaking tap"}, nil)

	body, contentType := multipartIssue(t, map[string]string{
		"title": "Leaking tap", "category": "plumbing", "is_public": "true",
	}, "tap.jpg", []byte("jpeg"))

	req := httptest.NewRequest(http.MethodPost, "/api/issues", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+student)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Issue created successfully")
	assert.Equal(t, []string{"uploads/tap.jpg"}, f.images.saved)
	assert.Empty(t, f.images.removed)
	f.services.issue.AssertExpectations(t)
}

func TestCreateIssue_RejectedIssueDropsImage(t *testing.T) {
	f := newRouterFixture(t)
	student := f.token(t, studentID, models.RoleStudent)

	f.services.issue.On("Create", mock.Anything, mock.Anything, studentID, mock.Anything).
		Return(nil, services.ValidationErrors{{Field: "title", Message: "is required"}})

	body, contentType := multipartIssue(t, map[string]string{"title": ""}, "tap.jpg", []byte("jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/api/issues", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+student)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"uploads/tap.jpg"}, f.images.saved)
	assert.Equal(t, []string{"uploads/tap.jpg"}, f.images.removed)
}

func TestCreateIssue_JSONWithoutImage(t *testing.T) {
	f := newRouterFixture(t)
	student := f.token(t, studentID, models.RoleStudent)

	f.services.issue.On("Create", mock.Anything, mock.Anything, studentID,
		mock.MatchedBy(func(p *string) bool { return p == nil }),
	).Return(&models.Issue{ID: 43}, nil)

	w := f.do(t, http.MethodPost, "/api/issues", student, gin.H{"title": "Broken fan"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, f.images.saved)
}

func TestCreateIssue_ImageTooLarge(t *testing.T) {
	f := newRouterFixture(t)
	f.images.saveErr = upload.ErrFileTooLarge
	student := f.token(t, studentID, models.RoleStudent)

	body, contentType := multipartIssue(t, map[string]string{"title": "Big"}, "big.png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/issues", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+student)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, CodePayloadTooLarge, decodeError(t, w).Code)
	f.services.issue.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIssue_RateLimited(t *testing.T) {
	f := newRouterFixture(t, func(o *RouteOptions) {
		o.Counter = &fixedCounter{count: 6}
		o.IssueRateLimit = 5
	})
	student := f.token(t, studentID, models.RoleStudent)

	w := f.do(t, http.MethodPost, "/api/issues", student, gin.H{"title": "Spam"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	f.services.issue.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenAndResolveIssue(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)

	f.services.issue.On("Open", mock.Anything, uint(5), &services.OpenIssueRequest{AssignedUserID: staffID}, adminID).
		Return(&models.Issue{ID: 5, Status: models.IssueInProgress}, nil)
	f.services.issue.On("Resolve", mock.Anything, uint(5), &services.ResolveIssueRequest{}, adminID).
		Return(&models.Issue{ID: 5, Status: models.IssueResolved}, nil)

	w := f.do(t, http.MethodPut, "/api/issues/5/open", admin, gin.H{"assigned_user_id": staffID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Issue marked as in progress and assigned")

	// Empty body is allowed on resolve
	w = f.do(t, http.MethodPut, "/api/issues/5/resolve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Issue resolved successfully")
	f.services.issue.AssertExpectations(t)
}

func TestExportIssues(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)

	f.services.export.On("ExportIssues", mock.Anything, &services.IssueListQuery{Status: "open"}).Return(&services.ExportFile{
		FileName:    "issues-20260101-000000.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("xlsx"),
		RowCount:    2,
	}, nil)

	w := f.do(t, http.MethodGet, "/api/issues/export?status=open", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="issues-20260101-000000.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", w.Header().Get("X-Row-Count"))
	assert.Equal(t, "xlsx", w.Body.String())
}

func TestStaticRoutesWinOverIDs(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)

	f.services.user.On("ListStaff", mock.Anything).Return([]services.StaffMember{{ID: staffID, Name: "Bob"}}, nil)
	f.services.issue.On("ListPublic", mock.Anything, mock.Anything).Return([]*models.Issue{}, int64(0), nil)

	w := f.do(t, http.MethodGet, "/api/issues/staff", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/issues/public", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestMessagesAndNotifications(t *testing.T) {
	f := newRouterFixture(t)
	student := f.token(t, studentID, models.RoleStudent)

	f.services.message.On("Send", mock.Anything, &services.SendMessageRequest{ReceiverID: adminID, Content: "hello"}, studentID).
		Return(&models.Message{ID: 8, SenderID: studentID, ReceiverID: adminID, Content: "hello"}, nil)
	f.services.message.On("UnreadCount", mock.Anything, studentID).Return(int64(2), nil)
	f.services.message.On("History", mock.Anything, studentID, adminID).Return([]*models.Message{}, nil)
	f.services.notification.On("MarkAllRead", mock.Anything, studentID).Return(int64(4), nil)
	f.services.notification.On("List", mock.Anything, studentID, &services.NotificationQuery{Limit: 5, UnreadOnly: true}).
		Return([]*models.Notification{}, nil)
	f.services.notification.On("MarkRead", mock.Anything, uint(77), studentID).Return(nil, services.ErrNotificationNotFound)

	w := f.do(t, http.MethodPost, "/api/messages", student, gin.H{"receiver_id": adminID, "content": "hello"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/messages/unread-count", student, nil)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/messages/history/1", student, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/notifications?limit=5&unread=true", student, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPut, "/api/notifications/mark-all-read", student, nil)
	assert.JSONEq(t, `{"message":"All notifications marked as read"}`, w.Body.String())

	w = f.do(t, http.MethodPut, "/api/notifications/77/read", student, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Notification not found", decodeError(t, w).Message)

	f.services.message.AssertExpectations(t)
	f.services.notification.AssertExpectations(t)
}

func TestLostFoundClaim(t *testing.T) {
	f := newRouterFixture(t)
	student := f.token(t, studentID, models.RoleStudent)

	f.services.lostFound.On("Claim", mock.Anything, uint(4), studentID, models.RoleStudent).Return(nil, services.ErrForbidden)
	f.services.lostFound.On("Claim", mock.Anything, uint(5), studentID, models.RoleStudent).
		Return(&models.LostFoundItem{ID: 5, Status: models.LostFoundClaimed}, nil)

	w := f.do(t, http.MethodPut, "/api/lost-found/4/claim", student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPut, "/api/lost-found/5/claim", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Item marked as claimed")
}

func TestStudents(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, adminID, models.RoleAdmin)

	f.services.user.On("DeactivateStudent", mock.Anything, studentID, adminID).
		Return(&models.User{ID: studentID, Role: models.RoleStudent}, nil)
	f.services.user.On("GetStudentDetails", mock.Anything, uint(99)).Return(nil, services.ErrStudentNotFound)

	w := f.do(t, http.MethodPut, "/api/students/3/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Student deactivated successfully")

	w = f.do(t, http.MethodGet, "/api/students/99", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Student not found", decodeError(t, w).Message)
}

func TestAnnouncementsArePublicToRead(t *testing.T) {
	f := newRouterFixture(t)
	f.services.announcement.On("List", mock.Anything).Return([]*models.Announcement{{ID: 1, Title: "Water cut"}}, nil)

	w := f.do(t, http.MethodGet, "/api/announcements", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Water cut")
}
