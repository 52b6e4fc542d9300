package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/model"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"
)

// UserDirectory looks up users on the remote side for the social layer.
// Filtering (self, existing friends, pending requests) happens in the
// social service, not here.
type UserDirectory interface {
	Search(ctx context.Context, query string) ([]model.UserInfo, error)
}

type RESTUserDirectory struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRESTUserDirectory(baseURL, token string) *RESTUserDirectory {
	return &RESTUserDirectory{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *RESTUserDirectory) Search(ctx context.Context, query string) ([]model.UserInfo, error) {
	endpoint := d.baseURL + "/users/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: user search returned %d", util.ErrFetchFailed, resp.StatusCode)
	}

	var raw []struct {
		ID       string `json:"_id"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrFetchFailed, err)
	}

	users := make([]model.UserInfo, 0, len(raw))
	for _, u := range raw {
		users = append(users, model.UserInfo{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar})
	}
	return users, nil
}
