package pantry

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// noDetectionPhrases mark a model reply that explicitly found nothing.
var noDetectionPhrases = []string{
	"no food",
	"unable to detect",
	"no food items",
	"empty",
	"nothing",
	"no ingredients",
	"couldn't detect",
	"could not detect",
	"can't detect",
	"cannot detect",
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Normalize extracts the JSON object embedded in raw model output.
//
// The greedy span from the first '{' to the last '}' is parsed. When there is
// no such span or it does not parse, the text is checked for a no-detection
// phrase and ErrNoDetection is returned on a match; otherwise the result is an
// ErrMalformedResponse carrying raw.
func Normalize(raw string) (map[string]any, error) {
	if obj, ok := extractObject(raw); ok {
		return obj, nil
	}
	if phrase, ok := MatchNoDetection(raw); ok {
		return nil, &Error{Kind: KindNoDetection, Reason: fmt.Sprintf("model reply contains %q", phrase)}
	}
	return nil, &Error{Kind: KindMalformedResponse, Raw: raw}
}

// MatchNoDetection reports the first no-detection phrase found in text.
func MatchNoDetection(text string) (string, bool) {
	lower := strings.ToLower(apostrophes.Replace(text))
	for _, phrase := range noDetectionPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func extractObject(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	var obj map[string]any
	if err := decodeStrict(strings.NewReader(raw[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, obj != nil
}

// DecodeDocument reads a single JSON object from r the same way Normalize
// parses model output, so the result can go straight to the validators.
func DecodeDocument(r io.Reader) (map[string]any, error) {
	var doc map[string]any
	if err := decodeStrict(r, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("invalid JSON document: expected an object")
	}
	return doc, nil
}

// decodeStrict decodes exactly one JSON value, keeping numbers as json.Number.
func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}
