package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/model"
)

// internalErrorBody はエラーレスポンスのエンコードに失敗した場合に返す固定ボディ。
var internalErrorBody = mustMarshal(contract.FromAPIError(model.NewInternalError()))

// WriteErrorResponse はAPIErrorをcontract.ErrorResponseとして書き込む。
// エラーレスポンスはキャッシュさせない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	body, err := json.Marshal(contract.FromAPIError(apiErr))
	if err != nil {
		slog.Error("failed to encode error response",
			slog.String("code", apiErr.Code),
			slog.String("error", err.Error()),
		)
		statusCode, body = http.StatusInternalServerError, internalErrorBody
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Warn("failed to write error response", slog.String("error", err.Error()))
	}
}

// WriteInternalServerError は500の汎用エラーを書き込む。原因はログにのみ残す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
