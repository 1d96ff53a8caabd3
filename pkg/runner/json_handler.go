package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Every bot turn is one Response object per line; every input line is either a JSON string,
// an object with an "utterance" field or plain text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, resp *Response) error {
	return h.Encoder.Encode(resp)
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return decodeUtterance(strings.TrimSpace(text)), nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}

func decodeUtterance(line string) string {
	var val string
	if err := json.Unmarshal([]byte(line), &val); err == nil {
		return val
	}
	var obj struct {
		Utterance *string `json:"utterance"`
	}
	if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.Utterance != nil {
		return *obj.Utterance
	}
	return line
}
