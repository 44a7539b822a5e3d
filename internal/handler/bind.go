package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

const maxMultipartMemory = 1 << 20

// errBodyTooLarge is returned when the body exceeds server.max_body_bytes
var errBodyTooLarge = errors.New("request body too large")

// bind decodes a submission body into v. JSON bodies are decoded directly;
// urlencoded and multipart forms are mapped field by field onto the same
// JSON names, so both encodings produce identical values. An empty body
// decodes to the zero submission.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if h.cfg.Server.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxBodyBytes)
	}
	defer r.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return readJSON(r.Body, v)
	}
	return readForm(r, mediaType, v)
}

func readJSON(body io.Reader, v interface{}) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return bodyError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// readForm expects mediaType as returned by mime.ParseMediaType, which
// lowercases it.
func readForm(r *http.Request, mediaType string, v interface{}) error {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return bodyError(err)
	}

	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	if r.MultipartForm != nil {
		for key, values := range r.MultipartForm.Value {
			if _, ok := fields[key]; !ok && len(values) > 0 {
				fields[key] = values[0]
			}
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("invalid form body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid form body: %w", err)
	}
	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return fmt.Errorf("failed to read request body: %w", err)
}
