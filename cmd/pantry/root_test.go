package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fridgechef/internal/pantry"
)

const milkReply = `Sure! {"ingredients": [{"name": "Milk", "estimated_quantity": "1 carton", "confidence": 0.92,
	"freshness": "fresh", "estimatedExpiryDays": 2, "category": "dairy",
	"nutritionalInfo": {"servingSize": "1 cup", "calories": 103, "protein": 8, "carbs": 12, "fat": 2.4}}]}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "analyze")
	assert.Contains(t, out, "export")
}

func TestAnalyzeFromStdin(t *testing.T) {
	out, err := execute(t, milkReply, "analyze")
	require.NoError(t, err)

	var got struct {
		Ingredients  []pantry.Ingredient `json:"ingredients"`
		ExpiringSoon []pantry.Ingredient `json:"expiring_soon"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "Milk", got.Ingredients[0].Name)
	assert.Len(t, got.ExpiringSoon, 1)
}

func TestAnalyzeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte(milkReply), 0o600))

	out, err := execute(t, "", "analyze", "--expiring-days", "1", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"expiring_soon": []`)
}

func TestAnalyzeNoDetection(t *testing.T) {
	_, err := execute(t, "There is no food in this picture.", "analyze")
	assert.True(t, errors.Is(err, pantry.ErrNoDetection))
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := execute(t, "", "analyze", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestSuggestText(t *testing.T) {
	doc := milkReply[strings.Index(milkReply, "{"):]

	out, err := execute(t, doc, "suggest")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Shopping List\n"))
	assert.Contains(t, out, "DAIRY\n-----\n☐ Eggs - ")
	assert.NotContains(t, out, "☐ Milk")
}

func TestSuggestJSON(t *testing.T) {
	out, err := execute(t, `{"ingredients": []}`, "suggest", "--json")
	require.NoError(t, err)

	var got struct {
		TotalItems int `json:"total_items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 17, got.TotalItems)
}

func TestSuggestRejectsInvalidDocument(t *testing.T) {
	_, err := execute(t, `{"ingredients": [{"name": "Milk"}]}`, "suggest")
	assert.True(t, errors.Is(err, pantry.ErrInvalidField))
}

func TestRecipesTable(t *testing.T) {
	reply := `{"recipes": [{"name": "Pancakes",
		"ingredients": {"available": ["Milk", "Eggs"], "missing": ["Flour"]},
		"instructions": ["Mix", "Fry"], "prepTime": "10 minutes", "cookTime": "15 minutes",
		"difficulty": "Easy", "cuisineType": "American"}]}`

	out, err := execute(t, reply, "recipes")
	require.NoError(t, err)
	assert.Equal(t, "NAME\tDIFFICULTY\tPREP\tCOOK\tMISSING\nPancakes\tEasy\t10 minutes\t15 minutes\t1\n", out)

	out, err = execute(t, reply, "recipes", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"cuisineType": "American"`)
}

func TestExportFormats(t *testing.T) {
	doc := `{"suggestions": [{"item": "Salt", "category": "pantry", "reason": "Basic seasoning"}]}`

	out, err := execute(t, doc, "export", "--checked", "salt")
	require.NoError(t, err)
	assert.Equal(t, "Shopping List\n====================\n\nPANTRY\n------\n☑ Salt - Basic seasoning\n\n", out)

	out, err = execute(t, doc, "export", "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `<span class="checkbox">☐</span>Salt - Basic seasoning`)

	_, err = execute(t, doc, "export", "--format", "pdf")
	assert.ErrorContains(t, err, "invalid format")
}
