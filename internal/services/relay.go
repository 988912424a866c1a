package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/nonce"
)

const maxRelayBody = 1 << 20

// HTTPRelay posts pitches to a relay endpoint as a form:
// action, nonce and pitch.
type HTTPRelay struct {
	URL    string
	Action string
	Client *http.Client
}

func NewHTTPRelay(endpoint, action string, timeout time.Duration) *HTTPRelay {
	return &HTTPRelay{
		URL:    endpoint,
		Action: action,
		Client: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRelay) Consult(ctx context.Context, pitch, token string) (models.Transcript, error) {
	form := url.Values{}
	form.Set("action", r.Action)
	form.Set("nonce", token)
	form.Set("pitch", pitch)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &SubmissionError{Kind: TransportFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, &SubmissionError{Kind: TransportFailure, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	if err != nil {
		return nil, &SubmissionError{Kind: TransportFailure, Err: err}
	}

	if !gjson.ValidBytes(body) {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &SubmissionError{
				Kind: TransportFailure,
				Err:  fmt.Errorf("relay returned %s", resp.Status),
			}
		}
		return nil, &SubmissionError{Kind: ProtocolFailure, Err: errors.New("relay response is not JSON")}
	}
	return DecodeEnvelope(body)
}

// DecodeEnvelope interprets a relay response body of the form
// {"success": bool, "data": {"conversation": [...]} | {"message": "..."}}.
func DecodeEnvelope(body []byte) (models.Transcript, error) {
	res := gjson.ParseBytes(body)
	message := res.Get("data.message").String()

	if !res.Get("success").Bool() {
		return nil, &SubmissionError{Kind: ProtocolFailure, Message: message}
	}

	conv := res.Get("data.conversation")
	if !conv.IsArray() {
		return nil, &SubmissionError{
			Kind:    ProtocolFailure,
			Message: message,
			Err:     errors.New("conversation missing or not an array"),
		}
	}

	var t models.Transcript
	if err := json.Unmarshal([]byte(conv.Raw), &t); err != nil {
		return nil, &SubmissionError{Kind: ProtocolFailure, Err: fmt.Errorf("decode conversation: %w", err)}
	}
	for i, e := range t {
		if strings.TrimSpace(e.SpeakerName) == "" {
			return nil, &SubmissionError{Kind: ProtocolFailure, Err: fmt.Errorf("conversation[%d] has no agent", i)}
		}
	}
	return t, nil
}

// LocalRelay runs the relay in process. It checks the token the same way the
// relay endpoint does.
type LocalRelay struct {
	Service *RelayService
	Issuer  *nonce.Issuer
	Action  string
}

func (r *LocalRelay) Consult(ctx context.Context, pitch, token string) (models.Transcript, error) {
	if r.Issuer != nil {
		if err := r.Issuer.Verify(r.Action, token); err != nil {
			return nil, &SubmissionError{Kind: ProtocolFailure, Message: MsgBadToken, Err: err}
		}
	}

	t, err := r.Service.Process(ctx, pitch)
	if err == nil {
		return t, nil
	}
	var re *RelayError
	if errors.As(err, &re) {
		return nil, &SubmissionError{Kind: ProtocolFailure, Message: re.Message, Err: re.Err}
	}
	return nil, &SubmissionError{Kind: TransportFailure, Err: err}
}
