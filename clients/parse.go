package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- constituency parser (/parse) ---
type ParseReq struct {
	Text string `json:"text"`
}
type ParseResp struct {
	// Brackets is the squared-bracket constituency analysis of the text,
	// e.g. "[S [NP [PRP i]] [VP [VBP agree]]]".
	Brackets string `json:"brackets"`
}

func (h *HTTP) Parse(ctx context.Context, url, text string) (*ParseResp, error) {
	payload, _ := json.Marshal(ParseReq{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/parse", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("parse %s: %s", resp.Status, string(body))
	}

	var out ParseResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse decode: %w", err)
	}
	return &out, nil
}
