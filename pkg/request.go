package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gorilla/mux"
)

// DecodeJSONBody decodes the request body into v. A missing or empty body leaves v untouched.
func DecodeJSONBody(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// TooLong is true when s has more than limit characters, as counted by a VARCHAR(limit) column.
func TooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}

// PathIntParam reads a positive integer route variable.
func PathIntParam(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	if raw == "" {
		return 0, fmt.Errorf("%s empty", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s is not a valid id: %s", name, raw)
	}
	return v, nil
}
