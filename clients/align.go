package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/speechlab/fluency-pipeline/prosody"
)

// AlignedWord is one word interval of the alignment word tier; silences
// carry an empty text or the aligner's pause marker.
type AlignedWord struct {
	Text  string  `json:"text"`
	POS   string  `json:"pos"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AlignedPhone is one phone interval; vowels carry their stress digit in the
// label (ARPAbet).
type AlignedPhone struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AlignResp is the alignment collaborator's full output for one audio file:
// time-aligned words and phones, independently detected syllable nuclei, the
// transcript, and uniformly sampled pitch/intensity tracks.
type AlignResp struct {
	Words      []AlignedWord        `json:"words"`
	Phones     []AlignedPhone       `json:"phones"`
	Nuclei     []float64            `json:"nuclei"` // nucleus peak times, sec
	Transcript string               `json:"transcript"`
	Pitch      prosody.SampledTrack `json:"pitch"`
	Intensity  prosody.SampledTrack `json:"intensity"`
}

// Align uploads a wav file to the alignment service and decodes its
// time-aligned analysis.
func (h *HTTP) Align(ctx context.Context, url, wavPath string) (*AlignResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/align", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("align %s: %s", resp.Status, string(body))
	}

	var out AlignResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("align decode: %w", err)
	}
	return &out, nil
}
