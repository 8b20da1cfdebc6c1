package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fridgechef/internal/history"
	"fridgechef/internal/logging"
	"fridgechef/internal/pantry"
	"fridgechef/internal/prompt"
	"fridgechef/internal/recipe"
)

// Model is a vision and text model back-end. Both methods return the raw
// reply text; parsing it is the caller's job.
type Model interface {
	DescribeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Options tunes the handler.
type Options struct {
	Provider      string
	ModelTimeout  time.Duration
	MaxImageBytes int64
	ResizeWidth   uint
	Debug         bool
}

// Handler handles HTTP requests.
type Handler struct {
	model  Model
	store  history.Store
	logger *zap.Logger
	opts   Options
}

// NewHandler creates a new Handler. store may be nil to disable the analysis log.
func NewHandler(model Model, store history.Store, logger *zap.Logger, opts Options) *Handler {
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = 45 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 << 20
	}
	if opts.ResizeWidth == 0 {
		opts.ResizeWidth = 800
	}
	return &Handler{model: model, store: store, logger: logger, opts: opts}
}

// AnalyzeResponse is returned by AnalyzeImage.
type AnalyzeResponse struct {
	Ingredients  []pantry.Ingredient `json:"ingredients"`
	ExpiringSoon []pantry.Ingredient `json:"expiring_soon"`
}

// ShoppingListResponse is returned by ShoppingList.
type ShoppingListResponse struct {
	Suggestions []pantry.ShoppingSuggestion `json:"suggestions"`
	List        pantry.ShoppingList         `json:"list"`
	TotalItems  int                         `json:"total_items"`
}

// AnalyzeImage detects the ingredients in an uploaded fridge photo.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, badRequest("No file provided", err))
		return
	}
	up, apiErr := readUpload(file, h.opts.MaxImageBytes)
	if apiErr != nil {
		h.respondError(c, apiErr)
		return
	}

	record := history.NewAnalysis(up.Data, h.opts.Provider)
	start := time.Now()
	up = downscale(up, h.opts.ResizeWidth)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.ModelTimeout)
	defer cancel()

	raw, err := h.model.DescribeImage(ctx, up.Data, up.MIMEType, prompt.Ingredients)
	if err != nil {
		h.saveAnalysis(c, record, nil, 0, "", err, time.Since(start))
		h.respondError(c, modelError(err))
		return
	}

	ingredients, err := pantry.ParseIngredients(raw)
	if err != nil {
		h.logger.Debug("model reply rejected",
			zap.String("request_id", requestid.Get(c)),
			zap.String("raw", logging.Truncate(raw, 500)),
			zap.Error(err),
		)
		h.saveAnalysis(c, record, nil, 0, raw, err, time.Since(start))
		h.respondError(c, modelError(err))
		return
	}

	expiring := pantry.ExpiringSoon(ingredients, pantry.ExpiringSoonDays)
	h.saveAnalysis(c, record, ingredients, len(expiring), raw, nil, time.Since(start))

	c.JSON(http.StatusOK, AnalyzeResponse{Ingredients: ingredients, ExpiringSoon: expiring})
}

// ShoppingList derives rule-based suggestions from the posted ingredients.
func (h *Handler) ShoppingList(c *gin.Context) {
	doc, err := pantry.DecodeDocument(c.Request.Body)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}
	ingredients, err := pantry.ValidateIngredients(doc)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}

	list := pantry.BuildShoppingList(ingredients)
	c.JSON(http.StatusOK, ShoppingListResponse{
		Suggestions: list.Flatten(),
		List:        list,
		TotalItems:  list.TotalItems(),
	})
}

// ExportShoppingList renders posted suggestions as text or a printable page.
func (h *Handler) ExportShoppingList(c *gin.Context) {
	format := c.DefaultQuery("format", "text")
	if format != "text" && format != "html" {
		h.respondError(c, badRequest("format must be text or html", nil))
		return
	}

	doc, err := pantry.DecodeDocument(c.Request.Body)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}
	suggestions, err := pantry.ValidateSuggestions(doc)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}
	checked, err := optionalTextList(doc, "checked")
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}

	list := pantry.Group(suggestions)
	marks := pantry.NewChecked(checked)
	if format == "text" {
		c.String(http.StatusOK, pantry.FormatText(list, marks))
		return
	}

	page, err := pantry.FormatHTML(list, marks)
	if err != nil {
		h.respondError(c, NewError(CodeInternalError, "Failed to render shopping list", http.StatusInternalServerError, err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// GenerateShoppingList asks the model for complementary grocery items.
func (h *Handler) GenerateShoppingList(c *gin.Context) {
	ingredients, ok := h.requireIngredients(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.ModelTimeout)
	defer cancel()

	raw, err := h.model.GenerateText(ctx, prompt.ShoppingList(ingredients))
	if err != nil {
		h.respondError(c, modelError(err))
		return
	}
	suggestions, err := pantry.ParseSuggestions(raw)
	if err != nil {
		h.logger.Debug("model suggestions rejected", zap.String("raw", logging.Truncate(raw, 500)), zap.Error(err))
		h.respondError(c, modelError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// GetRecipes asks the model for recipes built around the posted ingredients.
func (h *Handler) GetRecipes(c *gin.Context) {
	doc, err := pantry.DecodeDocument(c.Request.Body)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}
	names, err := ingredientNames(doc)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return
	}
	if len(names) == 0 {
		h.respondError(c, badRequest("Ingredients array is required and must not be empty", nil))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.ModelTimeout)
	defer cancel()

	raw, err := h.model.GenerateText(ctx, prompt.Recipes(names))
	if err != nil {
		h.respondError(c, modelError(err))
		return
	}
	recipes, err := recipe.ParseRecipes(raw)
	if err != nil {
		h.logger.Debug("model recipes rejected", zap.String("raw", logging.Truncate(raw, 500)), zap.Error(err))
		h.respondError(c, modelError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// ListAnalyses returns the most recent analysis log entries.
func (h *Handler) ListAnalyses(c *gin.Context) {
	if h.store == nil {
		h.respondError(c, NewError(CodeNotFound, "Analysis history is not enabled", http.StatusNotFound, nil))
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.respondError(c, badRequest("limit must be a number", err))
			return
		}
		limit = n
	}

	analyses, err := h.store.RecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, NewError(CodeInternalError, "Failed to load analyses", http.StatusInternalServerError, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"provider":  h.opts.Provider,
		"history":   h.store != nil,
	})
}

// requireIngredients decodes and validates a non-empty {"ingredients": [...]} body.
func (h *Handler) requireIngredients(c *gin.Context) ([]pantry.Ingredient, bool) {
	doc, err := pantry.DecodeDocument(c.Request.Body)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return nil, false
	}
	ingredients, err := pantry.ValidateIngredients(doc)
	if err != nil {
		h.respondError(c, clientInputError(err))
		return nil, false
	}
	if len(ingredients) == 0 {
		h.respondError(c, badRequest("Ingredients array is required and must not be empty", nil))
		return nil, false
	}
	return ingredients, true
}

func (h *Handler) saveAnalysis(c *gin.Context, a *history.Analysis, ingredients []pantry.Ingredient, expiring int, raw string, err error, took time.Duration) {
	if h.store == nil {
		return
	}
	a.Finish(ingredients, expiring, raw, err, took)
	if saveErr := h.store.SaveAnalysis(c.Request.Context(), a); saveErr != nil {
		h.logger.Warn("failed to save analysis",
			zap.String("request_id", requestid.Get(c)),
			zap.String("analysis_id", a.ID.String()),
			zap.Error(saveErr),
		)
	}
}

// ingredientNames accepts either plain names or ingredient objects.
func ingredientNames(doc map[string]any) ([]string, error) {
	items, err := pantry.Elements(doc, pantry.IngredientsKey)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok && s != "" {
			names = append(names, s)
			continue
		}
		rec, err := pantry.NewRecord(pantry.IngredientsKey, i, item, "ingredient")
		if err != nil {
			return nil, err
		}
		name, err := rec.Text("name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func optionalTextList(doc map[string]any, key string) ([]string, error) {
	if _, ok := doc[key]; !ok {
		return nil, nil
	}
	rec, err := pantry.NewRecord(key, 0, doc, key)
	if err != nil {
		return nil, err
	}
	return rec.TextList(key)
}
