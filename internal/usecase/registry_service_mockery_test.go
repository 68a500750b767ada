package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
	registrymock "github.com/pitchrank/pitchrank/internal/mocks/domain/registry"
	"github.com/stretchr/testify/mock"
)

func TestRegistryService_Lookup_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := registrymock.NewRepository(t)
	service := NewRegistryService(repo, nil)

	ref := registry.SourceRef{
		EntityType:     registry.EntityTeam,
		SourcePlatform: "acme",
		SourceNativeID: "4411",
	}

	repo.
		On("Get", mock.MatchedBy(func(v context.Context) bool { return v != nil }), ref).
		Return(registry.Mapping{SourceRef: ref, EntityID: "team-1"}, true, nil).
		Once()

	got, err := service.Lookup(ctx, ref)
	if err != nil {
		t.Fatalf("lookup mapping: %v", err)
	}
	if got != "team-1" {
		t.Fatalf("unexpected entity id: got=%s want=team-1", got)
	}
}

func TestRegistryService_Register_ConflictUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := registrymock.NewRepository(t)
	service := NewRegistryService(repo, nil)

	ref := registry.SourceRef{
		EntityType:     registry.EntityTeam,
		SourcePlatform: "acme",
		SourceNativeID: "4411",
	}

	repo.
		On("Get", mock.MatchedBy(func(v context.Context) bool { return v != nil }), ref).
		Return(registry.Mapping{SourceRef: ref, EntityID: "team-1"}, true, nil).
		Once()

	err := service.Register(ctx, registry.Mapping{SourceRef: ref, EntityID: "team-2"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegistryService_Register_IdempotentUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := registrymock.NewRepository(t)
	service := NewRegistryService(repo, nil)

	ref := registry.SourceRef{
		EntityType:     registry.EntityTeam,
		SourcePlatform: "acme",
		SourceNativeID: "4411",
	}

	// Same binding again must not reach Create.
	repo.
		On("Get", mock.MatchedBy(func(v context.Context) bool { return v != nil }), ref).
		Return(registry.Mapping{SourceRef: ref, EntityID: "team-1"}, true, nil).
		Once()

	if err := service.Register(ctx, registry.Mapping{SourceRef: ref, EntityID: "team-1"}); err != nil {
		t.Fatalf("re-register same binding: %v", err)
	}
}
