package scoutjar

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, target any) error {
	return c.doJSON(ctx, http.MethodGet, path, q, nil, target)
}

func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, target)
}

func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, body, target any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.APIURL+path, payload)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.roundTrip(req, target)
}

// postMultipart uploads fields plus one file part under fileField.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return err
		}
	}

	part, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, file); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+path, &b)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.roundTrip(req, nil)
}

func (c *Client) roundTrip(req *http.Request, target any) error {
	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(c.service, resp.StatusCode, data)
		c.logger.Debug("bad status",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if target == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, ErrMalformedResponse, err)
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

// jobAliases maps the alternate keys some backend versions emit onto the
// canonical job fields.
var jobAliases = map[string]string{
	"title":           "job_title",
	"description":     "job_description",
	"skills_required": "required_skills",
}

var jobType = reflect.TypeOf(Job{})

func jobAliasHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != jobType {
		return data, nil
	}

	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	for alias, canonical := range jobAliases {
		v, ok := m[alias]
		if !ok {
			continue
		}
		if current, exists := m[canonical]; !exists || isBlank(current) {
			m[canonical] = v
		}
	}

	return m, nil
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}

// decodeItems decodes loosely typed JSON items into out, tolerating numbers
// sent as strings and the job field aliases.
func decodeItems(items any, out any) error {
	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       jobAliasHook,
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	if err := decoder.Decode(items); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}
