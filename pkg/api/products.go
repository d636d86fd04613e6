package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cosmetia/cosmetia/pkg/auth"
	"github.com/cosmetia/cosmetia/pkg/catalog"
	"github.com/cosmetia/cosmetia/pkg/catalog/criteria"
	"github.com/cosmetia/cosmetia/pkg/catalog/rating"
	"github.com/cosmetia/cosmetia/pkg/catalog/search"
	"github.com/cosmetia/cosmetia/pkg/config"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

// ProductStore is the slice of the document store the product handlers
// need. *mongodb.Adapter satisfies it.
type ProductStore interface {
	FindOne(ctx context.Context, collection string, filter, result interface{}) error
	InsertOne(ctx context.Context, collection string, doc interface{}) (*mongo.InsertOneResult, error)
}

// ProductHandler serves the product catalog endpoints.
type ProductHandler struct {
	compiler   *criteria.Compiler
	engine     *search.Engine
	maintainer *rating.Maintainer
	store      ProductStore
	search     config.SearchConfig
	logger     logger.Logger
}

// NewProductHandler creates the product endpoints handler.
func NewProductHandler(
	compiler *criteria.Compiler,
	engine *search.Engine,
	maintainer *rating.Maintainer,
	store ProductStore,
	searchCfg config.SearchConfig,
	log logger.Logger,
) (*ProductHandler, error) {
	if compiler == nil || engine == nil || maintainer == nil || store == nil {
		return nil, fmt.Errorf("compiler, engine, maintainer and store are required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if searchCfg.DefaultPageSize <= 0 {
		searchCfg.DefaultPageSize = 20
	}
	if searchCfg.MaxPageSize <= 0 {
		searchCfg.MaxPageSize = 100
	}
	return &ProductHandler{
		compiler:   compiler,
		engine:     engine,
		maintainer: maintainer,
		store:      store,
		search:     searchCfg,
		logger:     log,
	}, nil
}

// Search handles GET /api/v1/products.
//
// Repeatable id parameters (ingredient, exclude-ingredient, brand,
// exclude-brand, provider, category) narrow the result; phrase, liked,
// min-rating and sort shape it; page and size select the window.
func (h *ProductHandler) Search(c *gin.Context) {
	page, size, err := h.parsePaging(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	req := criteria.Request{
		IngredientIDs:        c.QueryArray("ingredient"),
		ExcludeIngredientIDs: c.QueryArray("exclude-ingredient"),
		BrandIDs:             c.QueryArray("brand"),
		ExcludeBrandIDs:      c.QueryArray("exclude-brand"),
		ProviderIDs:          c.QueryArray("provider"),
		CategoryIDs:          c.QueryArray("category"),
		Phrase:               c.Query("phrase"),
		SortTokens:           c.QueryArray("sort"),
		CurrentUserID:        auth.CurrentUserID(c.Request.Context()),
	}

	if raw := c.Query("min-rating"); raw != "" {
		minRating, err := strconv.Atoi(raw)
		if err != nil || !catalog.ValidUserRating(minRating) {
			respondBadRequest(c, fmt.Sprintf("min-rating must be an integer in [%d, %d]", catalog.MinUserRating, catalog.MaxUserRating))
			return
		}
		req.MinRating = &minRating
	}
	if raw := c.Query("liked"); raw != "" {
		liked, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "liked must be a boolean")
			return
		}
		if liked && req.CurrentUserID == "" {
			unauthorized(c, "liked filter requires authentication")
			return
		}
		req.LikedOnly = liked
	}

	compiled, err := h.compiler.Compile(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.engine.Search(c.Request.Context(), compiled, search.PageRequest{Number: page, Size: size})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var product catalog.Product
	err := h.store.FindOne(c.Request.Context(), catalog.ProductsCollection, bson.M{"_id": id}, &product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respondError(c, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, id))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, product)
}

type createProductRequest struct {
	Name             string   `json:"name" binding:"required"`
	Brand            string   `json:"brand" binding:"required"`
	Provider         string   `json:"provider" binding:"required"`
	ShortDescription string   `json:"shortDescription"`
	Categories       []string `json:"categories"`
	Ingredients      []string `json:"ingredients"`
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	product := catalog.NewProduct(
		uuid.NewString(),
		req.Name,
		req.Brand,
		req.Provider,
		req.ShortDescription,
		req.Categories,
		req.Ingredients,
		time.Now().UTC(),
	)

	if _, err := h.store.InsertOne(c.Request.Context(), catalog.ProductsCollection, product); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithContext(c.Request.Context()).Info("product created", "product_id", product.ID)
	respondData(c, http.StatusCreated, product)
}

type reviewRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

// AddReview handles POST /api/v1/products/:id/review.
func (h *ProductHandler) AddReview(c *gin.Context) {
	value, ok := h.bindReview(c)
	if !ok {
		return
	}
	outcome, err := h.maintainer.AddReview(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c.Request.Context()), value)
	h.respondMutation(c, outcome, err, http.StatusCreated)
}

// EditReview handles PUT /api/v1/products/:id/review.
func (h *ProductHandler) EditReview(c *gin.Context) {
	value, ok := h.bindReview(c)
	if !ok {
		return
	}
	outcome, err := h.maintainer.EditReview(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c.Request.Context()), value)
	h.respondMutation(c, outcome, err, http.StatusNoContent)
}

// DeleteReview handles DELETE /api/v1/products/:id/review.
func (h *ProductHandler) DeleteReview(c *gin.Context) {
	outcome, err := h.maintainer.DeleteReview(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c.Request.Context()))
	h.respondMutation(c, outcome, err, http.StatusNoContent)
}

// Like handles PUT /api/v1/products/:id/like.
func (h *ProductHandler) Like(c *gin.Context) {
	outcome, err := h.maintainer.Like(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c.Request.Context()))
	h.respondMutation(c, outcome, err, http.StatusNoContent)
}

// Unlike handles DELETE /api/v1/products/:id/like.
func (h *ProductHandler) Unlike(c *gin.Context) {
	outcome, err := h.maintainer.Unlike(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c.Request.Context()))
	h.respondMutation(c, outcome, err, http.StatusNoContent)
}

func (h *ProductHandler) bindReview(c *gin.Context) (int, bool) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rating is required")
		return 0, false
	}
	return *req.Rating, true
}

func (h *ProductHandler) respondMutation(c *gin.Context, outcome rating.Outcome, err error, successStatus int) {
	if err != nil {
		respondError(c, err)
		return
	}

	switch outcome {
	case rating.OutcomeOK:
		c.Status(successStatus)
	case rating.OutcomeProductNotFound:
		respondError(c, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, c.Param("id")))
	case rating.OutcomeDuplicateReview:
		respondError(c, fmt.Errorf("%w: product %s", catalog.ErrDuplicateReview, c.Param("id")))
	case rating.OutcomeMissingReview:
		respondError(c, fmt.Errorf("%w: product %s", catalog.ErrMissingReview, c.Param("id")))
	default:
		respondError(c, fmt.Errorf("unexpected mutation outcome %q", outcome))
	}
}

func (h *ProductHandler) parsePaging(c *gin.Context) (page, size int, err error) {
	page = 0
	size = h.search.DefaultPageSize

	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			return 0, 0, fmt.Errorf("page must be a non-negative integer")
		}
	}
	if raw := c.Query("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return 0, 0, fmt.Errorf("size must be a positive integer")
		}
	}
	if size > h.search.MaxPageSize {
		size = h.search.MaxPageSize
	}
	return page, size, nil
}
