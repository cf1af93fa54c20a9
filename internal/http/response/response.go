package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobboard/internal/common"
)

type errorBody struct {
	Error  string            `json:"error"`
	Code   common.Code       `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response failed", slog.String("error", err.Error()))
	}
}

// Error writes err as a JSON error body. Untyped errors become 500 and
// their details stay in the log.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal server error", err)
	}
	status := StatusFor(appErr.Code)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", slog.String("code", string(appErr.Code)), slog.String("error", err.Error()))
		message = "internal server error"
	}
	JSON(w, status, errorBody{Error: message, Code: appErr.Code, Fields: appErr.Fields})
}

// StatusFor maps an error code to its HTTP status. Conflicts and invalid
// state are client errors on the same footing as validation failures.
func StatusFor(code common.Code) int {
	switch code {
	case common.CodeValidation, common.CodeConflict, common.CodeInvalidState:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
