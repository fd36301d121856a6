// Package client はPulse APIの型付きクライアントを提供する。
// リクエストとレスポンスの形はcontractパッケージの宣言に従う。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/hitoshi/pulse/internal/contract"
	"golang.org/x/net/publicsuffix"
)

// maxResponseBytes はレスポンスボディの読み取り上限。
const maxResponseBytes = 10 << 20

// ErrImageNameRequired は画像を添付したがファイル名が無いことを表す。
// ファイル名の無いパートはサーバー側で通常のフォーム値として扱われ、画像が失われる。
var ErrImageNameRequired = errors.New("image name is required when an image is attached")

// Error はエンドポイントが宣言していないステータス、またはエラーステータスの応答を表す。
type Error struct {
	Status int
	Body   contract.ErrorResponse
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Body.Code != "" {
		return fmt.Sprintf("pulse api: status %d: [%s] %s", e.Status, e.Body.Code, e.Body.Message)
	}
	return fmt.Sprintf("pulse api: status %d", e.Status)
}

// Client はPulse APIのクライアント。
// セッションCookieはクライアントが保持するCookie Jarで引き継がれる。
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New はClientを生成する。
// httpClientがnilの場合は新しいクライアントを作る。Cookie Jarが無い場合は設定する。
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c := *httpClient
		c.Jar = jar
		httpClient = &c
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Register はユーザーを登録し、セッションCookieを保持する。
func (c *Client) Register(ctx context.Context, in contract.RegisterRequest) (*contract.AuthResponse, error) {
	var out contract.AuthResponse
	if err := c.doJSON(ctx, contract.Register, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login はログインし、セッションCookieを保持する。
func (c *Client) Login(ctx context.Context, in contract.LoginRequest) (*contract.AuthResponse, error) {
	var out contract.AuthResponse
	if err := c.doJSON(ctx, contract.Login, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout はセッションを破棄する。
func (c *Client) Logout(ctx context.Context) (*contract.MessageResponse, error) {
	var out contract.MessageResponse
	if err := c.do(ctx, contract.Logout, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser はログイン中のユーザーを返す。未ログインの場合は401の*Errorを返す。
func (c *Client) CurrentUser(ctx context.Context) (*contract.UserResponse, error) {
	var out contract.UserResponse
	if err := c.do(ctx, contract.CurrentUser, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPosts は全投稿を新しい順に返す。
func (c *Client) ListPosts(ctx context.Context) ([]contract.PostResponse, error) {
	out := []contract.PostResponse{}
	if err := c.do(ctx, contract.ListPosts, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost は投稿を作成する。imageがnilの場合は画像なしで送信する。
// 画像を添付する場合はin.ImageNameにファイル名を指定する。空の場合はErrImageNameRequiredを返す。
func (c *Client) CreatePost(ctx context.Context, in contract.CreatePostRequest, image io.Reader) (*contract.PostResponse, error) {
	if image == nil {
		in.ImageName = ""
	} else if strings.TrimSpace(in.ImageName) == "" {
		return nil, ErrImageNameRequired
	}
	if err := contract.CreatePost.Validate(in); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{contract.FieldTitle, in.Title},
		{contract.FieldContent, in.Content},
		{contract.FieldAuthor, in.Author},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile(contract.FieldImage, in.ImageName)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, image); err != nil {
			return nil, fmt.Errorf("failed to write image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var out contract.PostResponse
	if err := c.do(ctx, contract.CreatePost, &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNews はトップニュースを返す。
func (c *Client) ListNews(ctx context.Context) ([]contract.NewsArticle, error) {
	out := []contract.NewsArticle{}
	if err := c.do(ctx, contract.ListNews, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// doJSON は入力をスキーマで検証してからJSONで送信する。
func (c *Client) doJSON(ctx context.Context, e contract.Endpoint, in contract.Input, out any) error {
	if err := e.Validate(in); err != nil {
		return err
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", e.Name, err)
	}
	return c.do(ctx, e, bytes.NewReader(body), "application/json", out)
}

// do はエンドポイントにリクエストを送り、成功時はoutにデコードする。
// 宣言された2xx以外のステータスは*Errorとして返す。
func (c *Client) do(ctx context.Context, e contract.Endpoint, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, e.Method, c.baseURL+e.Path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", e.Name, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", e.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", e.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !e.Declares(resp.StatusCode) {
		apiErr := &Error{Status: resp.StatusCode}
		// エラーボディが統一フォーマットでない場合はステータスのみ返す
		_ = json.Unmarshal(data, &apiErr.Body)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", e.Name, err)
	}
	return nil
}
