package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric はレジストリから名前とラベルが一致するメトリクスを探す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	if c := NewCollector(prometheus.NewRegistry()); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同一レジストリへの二重登録がpanicすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}

// TestRecordHTTPRequest は件数と処理時間がラベル別に記録されることを検証する。
func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/posts", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/posts", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/posts", 401, time.Millisecond)

	ok := findMetric(t, reg, "pulse_http_requests_total", map[string]string{"method": "GET", "route": "/api/posts", "status": "200"})
	if ok == nil || ok.GetCounter().GetValue() != 2 {
		t.Errorf("GET 200 counter = %v, want 2", ok)
	}
	unauth := findMetric(t, reg, "pulse_http_requests_total", map[string]string{"method": "POST", "status": "401"})
	if unauth == nil || unauth.GetCounter().GetValue() != 1 {
		t.Errorf("POST 401 counter = %v, want 1", unauth)
	}

	hist := findMetric(t, reg, "pulse_http_request_duration_seconds", map[string]string{"method": "GET", "route": "/api/posts"})
	if hist == nil || hist.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("histogram sample count = %v, want 2", hist)
	}
}

// TestRecordAuthAttempt は認証試行がoperation/result別に記録されることを検証する。
func TestRecordAuthAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthAttempt("login", "failure")
	c.RecordAuthAttempt("login", "failure")
	c.RecordAuthAttempt("register", "success")

	m := findMetric(t, reg, "pulse_auth_attempts_total", map[string]string{"operation": "login", "result": "failure"})
	if m == nil || m.GetCounter().GetValue() != 2 {
		t.Errorf("login failure = %v, want 2", m)
	}
}

// TestRecordNewsFetchAndPostCreated はニュース取得と投稿作成のカウンタを検証する。
func TestRecordNewsFetchAndPostCreated(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordNewsFetch("newsapi", "error")
	c.RecordPostCreated()
	c.RecordPostCreated()
	c.RecordPostCreated()

	news := findMetric(t, reg, "pulse_news_fetch_total", map[string]string{"provider": "newsapi", "result": "error"})
	if news == nil || news.GetCounter().GetValue() != 1 {
		t.Errorf("news fetch error = %v, want 1", news)
	}
	posts := findMetric(t, reg, "pulse_posts_created_total", nil)
	if posts == nil || posts.GetCounter().GetValue() != 3 {
		t.Errorf("posts created = %v, want 3", posts)
	}
}

// TestNop_DoesNotPanic はNopがどの呼び出しでも安全であることを検証する。
func TestNop_DoesNotPanic(t *testing.T) {
	var c MetricsCollector = Nop{}
	c.RecordHTTPRequest("GET", "/", 200, time.Second)
	c.RecordAuthAttempt("login", "success")
	c.RecordNewsFetch("rss", "success")
	c.RecordPostCreated()
}
