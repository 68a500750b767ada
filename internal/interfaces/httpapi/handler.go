package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/pitchrank/pitchrank/internal/domain/pipeline"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

// Handler exposes the staging, promotion, repair, and registry use cases
// over HTTP. Every response uses the Google JSON envelope.
type Handler struct {
	staging   *usecase.StagingService
	promotion *usecase.PromotionService
	repair    *usecase.RepairService
	audit     *usecase.AuditService
	registry  *usecase.RegistryService
	resolver  *usecase.TeamResolverService
	validator *validator.Validate
	logger    *logging.Logger
}

func NewHandler(
	staging *usecase.StagingService,
	promotion *usecase.PromotionService,
	repair *usecase.RepairService,
	audit *usecase.AuditService,
	registry *usecase.RegistryService,
	resolver *usecase.TeamResolverService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		staging:   staging,
		promotion: promotion,
		repair:    repair,
		audit:     audit,
		registry:  registry,
		resolver:  resolver,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// decodeAndValidate decodes the JSON request body into dst and runs the
// struct validator. Failures map onto ErrInvalidInput so the error writer
// answers 400.
func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(ctx, dst); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// writeAuthorization grants repair writes only when the caller both set the
// confirm flag and named an actor. Anything else is a dry run.
func writeAuthorization(confirm bool, actor string) pipeline.WriteAuthorization {
	if confirm && actor != "" {
		return pipeline.AuthorizeWrites(actor)
	}
	return pipeline.ReadOnly()
}
