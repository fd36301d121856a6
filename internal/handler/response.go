package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/middleware"
	"github.com/hitoshi/pulse/internal/model"
)

// maxJSONBodyBytes はJSONリクエストボディの上限サイズ。
const maxJSONBodyBytes = 1 << 20

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 未知のフィールドは検証エラー、それ以外の解析失敗は不正リクエストとして*APIErrorを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return model.NewPayloadTooLargeError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return model.NewInvalidRequestError("body is empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return model.NewValidationError([]model.FieldError{{Field: field, Message: "is not allowed"}})
		default:
			return model.NewInvalidRequestError("malformed JSON")
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return model.NewInvalidRequestError("body must contain a single JSON object")
	}
	return nil
}

// validate は入力をエンドポイントのスキーマで検証し、違反を*APIErrorにして返す。
func validate(e contract.Endpoint, in contract.Input) error {
	if err := e.Validate(in); err != nil {
		var verr *contract.ValidationError
		if errors.As(err, &verr) {
			return verr.APIError()
		}
		return err
	}
	return nil
}

// handleServiceError はサービス層のエラーを統一フォーマットのHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	logger.Error("internal server error",
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest,
		model.ErrCodeValidationFailed,
		model.ErrCodeDuplicateEmail,
		model.ErrCodeInvalidCredentials,
		model.ErrCodeUnsupportedImage:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbiddenOrigin:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case model.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case model.ErrCodeNewsFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
