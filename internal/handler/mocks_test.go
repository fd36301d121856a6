package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/pulse/internal/auth"
	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/post"
)

// --- モック定義 ---

// mockRegistrar はRegistrarのモック実装。
type mockRegistrar struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (*model.User, error)
}

func (m *mockRegistrar) Register(ctx context.Context, in auth.RegisterInput) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, nil
}

// mockAuthenticator はAuthenticatorのモック実装。
type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, email, password string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, email, password)
	}
	return nil, nil
}

// mockSessionService はSessionServiceのモック実装。
type mockSessionService struct {
	issueFn   func(ctx context.Context, userID int64) (*auth.IssuedSession, error)
	resolveFn func(ctx context.Context, cookieValue string) (*model.User, error)
	destroyFn func(ctx context.Context, cookieValue string) error
	maxAge    time.Duration
}

func (m *mockSessionService) Issue(ctx context.Context, userID int64) (*auth.IssuedSession, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, userID)
	}
	return &auth.IssuedSession{
		Session:     &model.Session{ID: "token", UserID: userID},
		CookieValue: "token.sig",
	}, nil
}

func (m *mockSessionService) Resolve(ctx context.Context, cookieValue string) (*model.User, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, cookieValue)
	}
	return nil, nil
}

func (m *mockSessionService) Destroy(ctx context.Context, cookieValue string) error {
	if m.destroyFn != nil {
		return m.destroyFn(ctx, cookieValue)
	}
	return nil
}

func (m *mockSessionService) MaxAge() time.Duration {
	if m.maxAge > 0 {
		return m.maxAge
	}
	return auth.DefaultSessionMaxAge
}

// mockPostService はPostServiceのモック実装。
type mockPostService struct {
	createFn func(ctx context.Context, author *model.User, in post.CreateInput) (*model.Post, error)
	listFn   func(ctx context.Context) ([]*model.Post, error)
}

func (m *mockPostService) Create(ctx context.Context, author *model.User, in post.CreateInput) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, author, in)
	}
	return nil, nil
}

func (m *mockPostService) List(ctx context.Context) ([]*model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.Post{}, nil
}

// mockNewsService はNewsServiceのモック実装。
type mockNewsService struct {
	topHeadlinesFn func(ctx context.Context) ([]model.NewsArticle, error)
}

func (m *mockNewsService) TopHeadlines(ctx context.Context) ([]model.NewsArticle, error) {
	if m.topHeadlinesFn != nil {
		return m.topHeadlinesFn(ctx)
	}
	return []model.NewsArticle{}, nil
}

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// mockAuthMetrics はRecordAuthAttemptの呼び出しを記録する。
type mockAuthMetrics struct {
	attempts []string
}

func (m *mockAuthMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}

func (m *mockAuthMetrics) RecordAuthAttempt(operation, result string) {
	m.attempts = append(m.attempts, operation+":"+result)
}

func (m *mockAuthMetrics) RecordNewsFetch(string, string) {}

func (m *mockAuthMetrics) RecordPostCreated() {}

// --- テストヘルパー ---

// signedInAs はCookie "good" を指定ユーザーとして解決するセッションサービスを返す。
func signedInAs(user *model.User) *mockSessionService {
	return &mockSessionService{
		resolveFn: func(ctx context.Context, cookieValue string) (*model.User, error) {
			if cookieValue == "good" {
				return user, nil
			}
			return nil, nil
		},
	}
}

// parseErrorResponse はレスポンスボディから統一エラーレスポンスをパースするヘルパー。
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) contract.ErrorResponse {
	t.Helper()
	var body contract.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}
