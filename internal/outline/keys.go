package outline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrKeyNotFound indicates no access key with the requested ID exists.
var ErrKeyNotFound = errors.New("access key not found")

// AccessKey is a provisioned VPN credential tracked by the server. Key
// state is never persisted locally; every view is a fresh fetch.
type AccessKey struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Port           int    `json:"port,omitempty" yaml:"port,omitempty"`
	Method         string `json:"method,omitempty" yaml:"method,omitempty"`
	AccessURL      string `json:"access_url" yaml:"access_url"`
	UsedBytes      int64  `json:"used_bytes" yaml:"used_bytes"`
	DataLimitBytes int64  `json:"data_limit_bytes,omitempty" yaml:"data_limit_bytes,omitempty"`
}

// ServerInfo describes the Outline server itself.
type ServerInfo struct {
	Name                 string `json:"name" yaml:"name"`
	ServerID             string `json:"serverId" yaml:"server_id"`
	Version              string `json:"version" yaml:"version"`
	PortForNewAccessKeys int    `json:"portForNewAccessKeys" yaml:"port_for_new_access_keys"`
}

type wireDataLimit struct {
	Bytes int64 `json:"bytes"`
}

type wireAccessKey struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Port      int            `json:"port"`
	Method    string         `json:"method"`
	AccessURL string         `json:"accessUrl"`
	DataLimit *wireDataLimit `json:"dataLimit"`
}

type wireKeyList struct {
	AccessKeys []wireAccessKey `json:"accessKeys"`
}

type wireTransfer struct {
	BytesTransferredByUserID map[string]int64 `json:"bytesTransferredByUserId"`
}

// Keys returns all access keys with server-reported usage merged in.
func (c *Client) Keys(ctx context.Context) ([]AccessKey, error) {
	var list wireKeyList
	if err := c.do(ctx, http.MethodGet, "/access-keys", nil, &list); err != nil {
		return nil, err
	}

	var transfer wireTransfer
	if err := c.do(ctx, http.MethodGet, "/metrics/transfer", nil, &transfer); err != nil {
		return nil, err
	}

	keys := make([]AccessKey, 0, len(list.AccessKeys))
	for _, wk := range list.AccessKeys {
		key := AccessKey{
			ID:        wk.ID,
			Name:      wk.Name,
			Port:      wk.Port,
			Method:    wk.Method,
			AccessURL: wk.AccessURL,
			UsedBytes: transfer.BytesTransferredByUserID[wk.ID],
		}
		if wk.DataLimit != nil {
			key.DataLimitBytes = wk.DataLimit.Bytes
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// GetKey returns a single access key by ID, or ErrKeyNotFound.
func (c *Client) GetKey(ctx context.Context, id int) (*AccessKey, error) {
	keys, err := c.Keys(ctx)
	if err != nil {
		return nil, err
	}
	want := strconv.Itoa(id)
	for i := range keys {
		if keys[i].ID == want {
			return &keys[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrKeyNotFound, id)
}

// CreateKey provisions a new access key. When name is non-empty the key is
// renamed right after creation, matching servers that ignore a name in the
// create request.
func (c *Client) CreateKey(ctx context.Context, name string) (*AccessKey, error) {
	var created wireAccessKey
	if err := c.do(ctx, http.MethodPost, "/access-keys", nil, &created); err != nil {
		return nil, err
	}

	key := &AccessKey{
		ID:        created.ID,
		Name:      created.Name,
		Port:      created.Port,
		Method:    created.Method,
		AccessURL: created.AccessURL,
	}

	if name != "" {
		if err := c.do(ctx, http.MethodPut, keyPath(created.ID)+"/name",
			map[string]string{"name": name}, nil); err != nil {
			return nil, fmt.Errorf("key %s created but renaming failed: %w", created.ID, err)
		}
		key.Name = name
	}

	return key, nil
}

// DeleteKey removes an access key.
func (c *Client) DeleteKey(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, keyPath(strconv.Itoa(id)), nil, nil)
}

// RenameKey changes an access key's name.
func (c *Client) RenameKey(ctx context.Context, id int, name string) error {
	return c.do(ctx, http.MethodPut, keyPath(strconv.Itoa(id))+"/name",
		map[string]string{"name": name}, nil)
}

// SetDataLimit sets a byte ceiling on a key's usage, enforced server-side.
func (c *Client) SetDataLimit(ctx context.Context, id int, bytes int64) error {
	body := map[string]wireDataLimit{"limit": {Bytes: bytes}}
	return c.do(ctx, http.MethodPut, keyPath(strconv.Itoa(id))+"/data-limit", body, nil)
}

// ClearDataLimit removes the byte ceiling from a key.
func (c *Client) ClearDataLimit(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, keyPath(strconv.Itoa(id))+"/data-limit", nil, nil)
}

// Server returns information about the Outline server.
func (c *Client) Server(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodGet, "/server", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func keyPath(id string) string {
	return "/access-keys/" + url.PathEscape(id)
}
