// Package rating maintains the per-product rating aggregate (per-user
// rating map, running sum, derived integer average) and the liked-by set.
//
// Every mutation is one updateOne: the filter encodes the precondition
// (review present/absent) and the update is a server-side aggregation
// pipeline that recomputes the derived fields from the post-mutation map.
// Concurrent mutations on the same product serialize inside the store's
// per-document atomic update, so there is no read-modify-write window and
// no lost update.
package rating

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cosmetia/cosmetia/pkg/catalog"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
	"github.com/cosmetia/cosmetia/pkg/observability/metrics"
)

// Outcome is the enumerated result of a rating/like mutation. Business
// conflicts (duplicate, missing) are outcomes, not errors: callers branch
// on them without exception-style control flow.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeProductNotFound Outcome = "product_not_found"
	OutcomeDuplicateReview Outcome = "duplicate_review"
	OutcomeMissingReview   Outcome = "missing_review"
)

// Executor is the slice of the document store the maintainer needs.
type Executor interface {
	// UpdateOne applies update to the first document matching filter and
	// reports how many documents matched.
	UpdateOne(ctx context.Context, collection string, filter, update interface{}) (matched int64, err error)

	// Exists reports whether any document matches filter.
	Exists(ctx context.Context, collection string, filter interface{}) (bool, error)
}

// Maintainer applies rating and like mutations to product documents.
type Maintainer struct {
	executor Executor
	logger   logger.Logger
}

// NewMaintainer creates a rating maintainer.
func NewMaintainer(executor Executor, log logger.Logger) (*Maintainer, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Maintainer{executor: executor, logger: log}, nil
}

// AddReview inserts the user's rating. Rejected with
// OutcomeDuplicateReview when the user already rated this product.
func (m *Maintainer) AddReview(ctx context.Context, productID, userID string, value int) (Outcome, error) {
	if err := validateMutation(productID, userID); err != nil {
		return "", err
	}
	if !catalog.ValidUserRating(value) {
		return "", fmt.Errorf("%w: %d not in [%d, %d]", catalog.ErrInvalidRating, value, catalog.MinUserRating, catalog.MaxUserRating)
	}

	field := ratingField(userID)
	filter := bson.M{"_id": productID, field: bson.M{"$exists": false}}
	update := append(bson.A{
		bson.M{"$set": bson.M{
			field:        value,
			"rating_sum": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$rating_sum", 0}}, value}},
			"updated_at": "$$NOW",
		}},
	}, recomputeStages()...)

	return m.applyReviewMutation(ctx, "add_review", productID, filter, update, false)
}

// EditReview replaces the user's rating. Rejected with
// OutcomeMissingReview when no rating exists for the user.
func (m *Maintainer) EditReview(ctx context.Context, productID, userID string, value int) (Outcome, error) {
	if err := validateMutation(productID, userID); err != nil {
		return "", err
	}
	if !catalog.ValidUserRating(value) {
		return "", fmt.Errorf("%w: %d not in [%d, %d]", catalog.ErrInvalidRating, value, catalog.MinUserRating, catalog.MaxUserRating)
	}

	field := ratingField(userID)
	filter := bson.M{"_id": productID, field: bson.M{"$exists": true}}
	// Within a single $set every "$" reference reads the pre-stage value,
	// so rating_sum moves by exactly (new - old) while the entry flips.
	update := append(bson.A{
		bson.M{"$set": bson.M{
			"rating_sum": bson.M{"$add": bson.A{"$rating_sum", bson.M{"$subtract": bson.A{value, "$" + field}}}},
			field:        value,
			"updated_at": "$$NOW",
		}},
	}, recomputeStages()...)

	return m.applyReviewMutation(ctx, "edit_review", productID, filter, update, true)
}

// DeleteReview removes the user's rating. Rejected with
// OutcomeMissingReview when no rating exists for the user. Deleting the
// last rating resets the average to 0.
func (m *Maintainer) DeleteReview(ctx context.Context, productID, userID string) (Outcome, error) {
	if err := validateMutation(productID, userID); err != nil {
		return "", err
	}

	field := ratingField(userID)
	filter := bson.M{"_id": productID, field: bson.M{"$exists": true}}
	update := append(bson.A{
		bson.M{"$set": bson.M{
			"rating_sum": bson.M{"$subtract": bson.A{"$rating_sum", bson.M{"$ifNull": bson.A{"$" + field, 0}}}},
			"updated_at": "$$NOW",
		}},
		bson.M{"$unset": field},
	}, recomputeStages()...)

	return m.applyReviewMutation(ctx, "delete_review", productID, filter, update, true)
}

// Like adds the user to the product's liked-by set. Idempotent.
func (m *Maintainer) Like(ctx context.Context, productID, userID string) (Outcome, error) {
	return m.applyLikeMutation(ctx, "like", productID, userID, bson.M{
		"$addToSet": bson.M{"liked_by": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

// Unlike removes the user from the product's liked-by set. Unliking a
// product that was never liked is a no-op, not an error.
func (m *Maintainer) Unlike(ctx context.Context, productID, userID string) (Outcome, error) {
	return m.applyLikeMutation(ctx, "unlike", productID, userID, bson.M{
		"$pull": bson.M{"liked_by": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (m *Maintainer) applyReviewMutation(ctx context.Context, operation, productID string, filter bson.M, update bson.A, wantExisting bool) (Outcome, error) {
	matched, err := m.executor.UpdateOne(ctx, catalog.ProductsCollection, filter, update)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", operation, err)
	}

	outcome := OutcomeOK
	if matched == 0 {
		outcome, err = m.classifyMiss(ctx, productID, wantExisting)
		if err != nil {
			return "", err
		}
	}

	metrics.RecordRatingMutation(operation, string(outcome))
	m.logger.WithContext(ctx).Debug("rating mutation applied",
		"operation", operation, "product_id", productID, "outcome", outcome)
	return outcome, nil
}

func (m *Maintainer) applyLikeMutation(ctx context.Context, operation, productID, userID string, update bson.M) (Outcome, error) {
	if err := validateMutation(productID, userID); err != nil {
		return "", err
	}

	matched, err := m.executor.UpdateOne(ctx, catalog.ProductsCollection, bson.M{"_id": productID}, update)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", operation, err)
	}

	outcome := OutcomeOK
	if matched == 0 {
		outcome = OutcomeProductNotFound
	}

	metrics.RecordRatingMutation(operation, string(outcome))
	return outcome, nil
}

// classifyMiss distinguishes a missing product from a violated review
// precondition after an update matched nothing.
func (m *Maintainer) classifyMiss(ctx context.Context, productID string, wantExisting bool) (Outcome, error) {
	exists, err := m.executor.Exists(ctx, catalog.ProductsCollection, bson.M{"_id": productID})
	if err != nil {
		return "", fmt.Errorf("failed to classify mutation outcome: %w", err)
	}
	if !exists {
		return OutcomeProductNotFound, nil
	}
	if wantExisting {
		return OutcomeMissingReview, nil
	}
	return OutcomeDuplicateReview, nil
}

// recomputeStages rebuilds rate_count and the truncated average from the
// post-mutation ratings map. Two stages because rating reads the
// rate_count written by the stage before it.
func recomputeStages() bson.A {
	return bson.A{
		bson.M{"$set": bson.M{
			"rate_count": bson.M{"$size": bson.M{"$objectToArray": bson.M{"$ifNull": bson.A{"$ratings", bson.M{}}}}},
		}},
		bson.M{"$set": bson.M{
			"rating": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$rate_count", 0}},
				0,
				bson.M{"$toInt": bson.M{"$floor": bson.M{"$divide": bson.A{"$rating_sum", "$rate_count"}}}},
			}},
		}},
	}
}

// ratingField is the document path of one user's rating map entry.
func ratingField(userID string) string {
	return "ratings." + userID
}

// validateMutation rejects ids that cannot address a document field. A
// user id containing '.' or '$' would corrupt the ratings map path.
func validateMutation(productID, userID string) error {
	if productID == "" {
		return fmt.Errorf("product id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.ContainsAny(userID, ".$") {
		return fmt.Errorf("user id %q contains reserved characters", userID)
	}
	return nil
}
