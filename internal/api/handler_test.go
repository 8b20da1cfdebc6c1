package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fridgechef/internal/history"
	"fridgechef/internal/pantry"
)

// mockModel is a hand-written Model.
type mockModel struct {
	reply    string
	err      error
	panics   bool
	prompt   string
	mimeType string
	image    []byte
	calls    int
}

func (m *mockModel) DescribeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error) {
	m.calls++
	m.image = imageData
	m.mimeType = mimeType
	m.prompt = prompt
	if m.panics {
		panic("model exploded")
	}
	return m.reply, m.err
}

func (m *mockModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.reply, m.err
}

// mockStore is a hand-written history.Store.
type mockStore struct {
	saved   []*history.Analysis
	recent  []history.Analysis
	saveErr error
	limit   int
}

func (m *mockStore) SaveAnalysis(ctx context.Context, a *history.Analysis) error {
	m.saved = append(m.saved, a)
	return m.saveErr
}

func (m *mockStore) RecentAnalyses(ctx context.Context, limit int) ([]history.Analysis, error) {
	m.limit = limit
	return m.recent, nil
}

// statusErr mimics a platform client error carrying an HTTP status.
type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func newTestRouter(model Model, store history.Store, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	opts.Provider = "mock"
	h := NewHandler(model, store, zap.NewNop(), opts)
	return NewRouter(h, zap.NewNop(), RouterConfig{AllowOrigins: []string{"http://localhost:3000"}, Debug: true})
}

func ingredientJSON(name, category string, confidence float64, expiry int) string {
	return fmt.Sprintf(`{"name": %q, "estimated_quantity": "1", "confidence": %v, "freshness": "fresh",
		"estimatedExpiryDays": %d, "category": %q,
		"nutritionalInfo": {"servingSize": "100g", "calories": 50, "protein": 3, "carbs": 5, "fat": 1}}`,
		name, confidence, expiry, category)
}

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="fridge.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestAnalyzeImage(t *testing.T) {
	model := &mockModel{reply: "Here you go:\n{\"ingredients\": [" +
		ingredientJSON("Milk", "dairy", 0.9, 2) + "," +
		ingredientJSON("Blurry jar", "pantry", 0.2, 30) + "," +
		ingredientJSON("Rice", "pantry", 0.7, 300) + "]}"}
	store := &mockStore{}
	r := newTestRouter(model, store, Options{})

	rr := serve(r, uploadRequest(t, "image/png", pngImage(t, 1000, 10)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Ingredients, 2)
	assert.Equal(t, "Milk", resp.Ingredients[0].Name)
	assert.Equal(t, "Rice", resp.Ingredients[1].Name)
	require.Len(t, resp.ExpiringSoon, 1)
	assert.Equal(t, "Milk", resp.ExpiringSoon[0].Name)

	// The image is downscaled before it reaches the model.
	assert.Equal(t, "image/png", model.mimeType)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(model.image))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)

	require.Len(t, store.saved, 1)
	assert.Equal(t, history.OutcomeOK, store.saved[0].Outcome)
	assert.Equal(t, []string{"Milk", "Rice"}, []string(store.saved[0].Ingredients))
	assert.Equal(t, "mock", store.saved[0].Provider)
}

func TestAnalyzeImageModelOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		status  int
		code    string
		outcome history.Outcome
	}{
		{"refusal", "I'm sorry, I couldn't detect any food items in this image.", nil, http.StatusUnprocessableEntity, CodeNoDetection, history.OutcomeNoDetection},
		{"only low confidence", `{"ingredients": [` + ingredientJSON("Mystery jar", "pantry", 0.25, 3) + `]}`, nil, http.StatusUnprocessableEntity, CodeNoDetection, history.OutcomeNoDetection},
		{"malformed", `{"ingredients": [`, nil, http.StatusBadGateway, CodeMalformedResponse, history.OutcomeMalformed},
		{"bad structure", `{"items": []}`, nil, http.StatusBadGateway, CodeInvalidModelResponse, history.OutcomeInvalidResponse},
		{"timeout", "", context.DeadlineExceeded, http.StatusRequestTimeout, CodeRequestTimeout, history.OutcomeError},
		{"rate limited", "", statusErr(http.StatusTooManyRequests), http.StatusTooManyRequests, CodeTooManyRequests, history.OutcomeError},
		{"bad key", "", statusErr(http.StatusUnauthorized), http.StatusBadGateway, CodeModelUnauthorized, history.OutcomeError},
		{"other", "", errors.New("connection reset"), http.StatusInternalServerError, CodeInternalError, history.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			r := newTestRouter(&mockModel{reply: tt.reply, err: tt.err}, store, Options{})

			rr := serve(r, uploadRequest(t, "image/jpeg", []byte("not really a jpeg")))
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr)["code"])

			require.Len(t, store.saved, 1)
			assert.Equal(t, tt.outcome, store.saved[0].Outcome)
		})
	}
}

func TestAnalyzeImageInvalidFieldDetailsInDebug(t *testing.T) {
	bad := strings.Replace(ingredientJSON("Yogurt", "dairy", 0.9, 4), `"protein": 3, `, "", 1)
	reply := `{"ingredients": [` + ingredientJSON("Milk", "dairy", 0.9, 2) + "," + bad + `]}`

	r := newTestRouter(&mockModel{reply: reply}, nil, Options{Debug: true})
	rr := serve(r, uploadRequest(t, "image/jpeg", []byte("jpeg")))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, CodeInvalidModelResponse, body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "nutritionalInfo.protein", details["field"])
	assert.EqualValues(t, 1, details["index"])
}

func TestAnalyzeImageHidesDetailsOutsideDebug(t *testing.T) {
	r := newTestRouter(&mockModel{reply: `{"items": []}`}, nil, Options{})
	rr := serve(r, uploadRequest(t, "image/jpeg", []byte("jpeg")))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotContains(t, decodeError(t, rr), "details")
}

func TestAnalyzeImageRejectsBadUploads(t *testing.T) {
	model := &mockModel{}
	r := newTestRouter(model, nil, Options{MaxImageBytes: 16})

	rr := serve(r, uploadRequest(t, "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidImageType, decodeError(t, rr)["code"])

	rr = serve(r, uploadRequest(t, "image/png", bytes.Repeat([]byte("x"), 64)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidImageSize, decodeError(t, rr)["code"])

	rr = serve(r, jsonRequest("/api/analyze-image", `{}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidRequest, decodeError(t, rr)["code"])

	assert.Zero(t, model.calls)
}

func TestAnalyzeImageStoreFailureIsNotFatal(t *testing.T) {
	model := &mockModel{reply: `{"ingredients": [` + ingredientJSON("Milk", "dairy", 0.9, 2) + `]}`}
	r := newTestRouter(model, &mockStore{saveErr: errors.New("db down")}, Options{})

	rr := serve(r, uploadRequest(t, "image/jpeg", []byte("jpeg")))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	r := newTestRouter(&mockModel{panics: true}, nil, Options{})

	rr := serve(r, uploadRequest(t, "image/jpeg", []byte("jpeg")))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, CodeInternalError, decodeError(t, rr)["code"])
}

func TestShoppingList(t *testing.T) {
	model := &mockModel{}
	r := newTestRouter(model, nil, Options{})

	rr := serve(r, jsonRequest("/api/shopping-list", `{"ingredients": [`+ingredientJSON("Milk", "dairy", 0.9, 2)+`]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp ShoppingListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.List.Dairy, 2)
	assert.Equal(t, "Eggs", resp.List.Dairy[0].Item)
	assert.Equal(t, pantry.PriorityHigh, resp.List.Dairy[0].Priority)
	assert.Equal(t, "Butter", resp.List.Dairy[1].Item)
	assert.Equal(t, 16, resp.TotalItems)
	assert.Len(t, resp.Suggestions, 16)
	assert.Zero(t, model.calls)
}

func TestShoppingListRejectsInvalidInput(t *testing.T) {
	r := newTestRouter(&mockModel{}, nil, Options{})

	bad := strings.Replace(ingredientJSON("Milk", "dairy", 0.9, 2), `"dairy"`, `"meat"`, 1)
	rr := serve(r, jsonRequest("/api/shopping-list", `{"ingredients": [`+bad+`]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidRequest, decodeError(t, rr)["code"])

	rr = serve(r, jsonRequest("/api/shopping-list", `not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, jsonRequest("/api/shopping-list", `{"ingredients": "Milk"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportShoppingList(t *testing.T) {
	r := newTestRouter(&mockModel{}, nil, Options{})
	body := `{
		"suggestions": [
			{"item": "Eggs", "category": "dairy", "reason": "Essential for baking and cooking", "priority": "high"},
			{"item": "Salt", "category": "pantry", "reason": "Basic seasoning"}
		],
		"checked": ["eggs"]
	}`

	rr := serve(r, jsonRequest("/api/shopping-list/export?format=text", body))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Shopping List\n====================\n\n"+
		"DAIRY\n-----\n☑ Eggs - Essential for baking and cooking\n\n"+
		"PANTRY\n------\n☐ Salt - Basic seasoning\n\n", rr.Body.String())

	rr = serve(r, jsonRequest("/api/shopping-list/export?format=html", body))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "<h1>Shopping List</h1>")

	rr = serve(r, jsonRequest("/api/shopping-list/export?format=pdf", body))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, jsonRequest("/api/shopping-list/export", `{"suggestions": [], "checked": [1]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGenerateShoppingList(t *testing.T) {
	model := &mockModel{reply: `{"suggestions": [{"item": "Onions", "category": "produce", "reason": "Essential base"}]}`}
	r := newTestRouter(model, nil, Options{})

	rr := serve(r, jsonRequest("/api/generate-shopping-list", `{"ingredients": [`+ingredientJSON("Milk", "dairy", 0.9, 2)+`]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, model.prompt, "Milk (dairy)")

	var resp struct {
		Suggestions []pantry.ShoppingSuggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []pantry.ShoppingSuggestion{{Item: "Onions", Category: pantry.CategoryProduce, Reason: "Essential base"}}, resp.Suggestions)
}

func TestGenerateShoppingListErrors(t *testing.T) {
	model := &mockModel{reply: `{"suggestions": [{"item": "Steak", "category": "meat", "reason": "Dinner"}]}`}
	r := newTestRouter(model, nil, Options{})

	rr := serve(r, jsonRequest("/api/generate-shopping-list", `{"ingredients": []}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, model.calls)

	rr = serve(r, jsonRequest("/api/generate-shopping-list", `{"ingredients": [`+ingredientJSON("Milk", "dairy", 0.9, 2)+`]}`))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, CodeInvalidModelResponse, decodeError(t, rr)["code"])
}

func TestGetRecipes(t *testing.T) {
	model := &mockModel{reply: "```json\n" + `{"recipes": [{
		"name": "Spinach Omelette",
		"ingredients": {"available": ["Eggs", "Spinach"], "missing": []},
		"instructions": ["Whisk", "Cook"],
		"prepTime": "5 minutes", "cookTime": "10 minutes",
		"difficulty": "Easy", "cuisineType": "French"
	}]}` + "\n```"}
	r := newTestRouter(model, nil, Options{})

	rr := serve(r, jsonRequest("/api/get-recipes", `{"ingredients": ["Eggs", {"name": "Spinach"}]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, model.prompt, "[Eggs, Spinach]")

	var resp map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp["recipes"], 1)
	assert.Equal(t, "Spinach Omelette", resp["recipes"][0]["name"])
}

func TestGetRecipesErrors(t *testing.T) {
	model := &mockModel{reply: `{"recipes": [{"name": "Toast"}]}`}
	r := newTestRouter(model, nil, Options{})

	rr := serve(r, jsonRequest("/api/get-recipes", `{"ingredients": []}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(r, jsonRequest("/api/get-recipes", `{"ingredients": [{"qty": 2}]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, model.calls)

	rr = serve(r, jsonRequest("/api/get-recipes", `{"ingredients": ["Bread"]}`))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, CodeInvalidModelResponse, decodeError(t, rr)["code"])
}

func TestListAnalyses(t *testing.T) {
	store := &mockStore{recent: []history.Analysis{{ImageHash: "abc", Outcome: history.OutcomeOK}}}
	r := newTestRouter(&mockModel{}, store, Options{})

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/analyses?limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, store.limit)
	assert.Contains(t, rr.Body.String(), `"image_hash":"abc"`)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/api/analyses?limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListAnalysesWithoutStore(t *testing.T) {
	r := newTestRouter(&mockModel{}, nil, Options{})

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/analyses", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&mockModel{}, nil, Options{})

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	assert.Contains(t, rr.Body.String(), `"history":false`)
}

func TestBodySizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&mockModel{}, nil, zap.NewNop(), Options{})
	r := NewRouter(h, zap.NewNop(), RouterConfig{MaxBodyBytes: 8, Debug: true})

	rr := serve(r, jsonRequest("/api/shopping-list", `{"ingredients": []}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
