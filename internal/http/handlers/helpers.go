package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/middleware"
)

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.NewError(common.CodeValidation, "request body too large", err)
		}
		return common.NewError(common.CodeValidation, "invalid request body", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return common.NewError(common.CodeValidation, "request body is required", nil)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return common.NewError(common.CodeValidation, "invalid request body", err)
	}
	return nil
}

// idFromPath returns the positive integer at segment idx of the request
// path, counting from zero after the leading slash.
func idFromPath(r *http.Request, idx int) (int64, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if idx < 0 || idx >= len(parts) {
		return 0, common.NewError(common.CodeValidation, "missing id", nil)
	}
	id, err := common.ParseID(parts[idx])
	if err != nil {
		return 0, common.NewError(common.CodeValidation, "invalid id", err)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, common.NewValidationError("invalid query parameter", map[string]string{name: "must be an integer"})
	}
	return parsed, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return 0, nil
	}
	id, err := common.ParseID(value)
	if err != nil {
		return 0, common.NewValidationError("invalid query parameter", map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

func pageParams(r *http.Request) (int, int, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func identity(r *http.Request) (user.Identity, error) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok || actor.ID == 0 {
		return user.Identity{}, errUnauthorized()
	}
	return actor, nil
}

// optionalIdentity returns the zero identity for anonymous callers.
func optionalIdentity(r *http.Request) user.Identity {
	actor, _ := middleware.IdentityFromContext(r.Context())
	return actor
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}

// flexibleID accepts an identifier sent either as a JSON number or as a
// numeric string. Anything unparseable decodes to zero so the service can
// report it as a field error.
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexibleID(id)
	return nil
}
