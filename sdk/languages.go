package runbox

import (
	"context"
	"fmt"
	"net/http"
)

// LanguagesService lists the supported languages.
type LanguagesService struct {
	c *Client
}

// List returns every supported language and the default one's id.
func (s *LanguagesService) List(ctx context.Context) (*LanguageList, error) {
	return doRequest[LanguageList](ctx, s.c, http.MethodGet, "/languages", nil, http.StatusOK)
}

// Get returns one language including its starter program.
func (s *LanguagesService) Get(ctx context.Context, id int) (*Language, error) {
	return doRequest[Language](ctx, s.c, http.MethodGet, fmt.Sprintf("/languages/%d", id), nil, http.StatusOK)
}
