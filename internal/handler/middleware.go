package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/segyhp/trainer-billing/pkg/response"
)

// TrainerHeader carries the authenticated trainer, set by the identity layer in front of this service.
const TrainerHeader = "X-Trainer-ID"

type contextKey string

const trainerIDKey contextKey = "trainer_id"

// TrainerScope rejects requests without a valid trainer ID and stores it in the request context.
func TrainerScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TrainerHeader)
		if raw == "" {
			response.Unauthorized(w, "Missing "+TrainerHeader+" header")
			return
		}

		trainerID, err := uuid.Parse(raw)
		if err != nil || trainerID == uuid.Nil {
			response.Unauthorized(w, "Invalid "+TrainerHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithTrainerID(r.Context(), trainerID)))
	})
}

func WithTrainerID(ctx context.Context, trainerID uuid.UUID) context.Context {
	return context.WithValue(ctx, trainerIDKey, trainerID)
}

// TrainerIDFromContext returns the trainer set by TrainerScope.
func TrainerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	trainerID, ok := ctx.Value(trainerIDKey).(uuid.UUID)
	return trainerID, ok
}
