package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// httpBackend talks to the hosted chat service. All endpoints are
// JSON-over-POST; anything outside 2xx is an error carrying the
// response body.
type httpBackend struct {
	cfg    Config
	client *http.Client
}

// NewHTTPBackend builds the production Backend from a Config.
func NewHTTPBackend(cfg Config) Backend {
	cfg = cfg.withDefaults()
	return &httpBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (b *httpBackend) StartSession(ctx context.Context, req StartRequest) (string, error) {
	customData, err := json.Marshal(req.Customer.CustomData)
	if err != nil {
		return "", errors.Wrap(err, "encode client_custom_data")
	}
	if req.Customer.CustomData == nil {
		customData = []byte("{}")
	}

	body := map[string]any{
		"cwid":               b.cfg.CWID,
		"security_token":     b.cfg.SecurityToken,
		"namespace":          b.cfg.Namespace,
		"client_name":        req.Customer.Name,
		"client_email":       req.Customer.Email,
		"phone_number":       req.Customer.Phone,
		"customer_path":      req.Path,
		"client_custom_data": string(customData),
		"lang":               b.cfg.Lang,
	}
	if len(req.History) > 0 {
		body["customer_history"] = req.History
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := b.post(ctx, b.cfg.APIURL+"/new", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("chat: no token in session response")
	}
	return resp.Token, nil
}

func (b *httpBackend) Poll(ctx context.Context, token string) ([]Record, error) {
	var records []Record
	err := b.post(ctx, b.cfg.PollingURL, map[string]any{"token": token}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (b *httpBackend) SendMessage(ctx context.Context, token, body string) error {
	return b.post(ctx, b.cfg.APIURL+"/put_message", map[string]any{
		"token":        token,
		"message_body": body,
	}, nil)
}

func (b *httpBackend) EndSession(ctx context.Context, token string) error {
	return b.post(ctx, b.cfg.APIURL+"/end", map[string]any{"token": token}, nil)
}

func (b *httpBackend) post(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return errors.Errorf("chat api error: %s body=%s", resp.Status, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode response from %s", url)
	}
	return nil
}
