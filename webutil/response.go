package webutil

import (
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/coreybb/locallibrary/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ListResponse is the envelope of every paginated listing.
type ListResponse[T any] struct {
	Data     []T             `json:"data"`
	Metadata models.Metadata `json:"metadata"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondWithList writes items with pagination metadata. A nil slice is
// rendered as an empty array.
func RespondWithList[T any](w http.ResponseWriter, items []T, metadata models.Metadata) {
	if items == nil {
		items = []T{}
	}
	RespondWithJSON(w, http.StatusOK, ListResponse[T]{Data: items, Metadata: metadata})
}
